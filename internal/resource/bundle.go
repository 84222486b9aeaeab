package resource

import (
	"github.com/mliu7/trackrest/internal/trackable"
)

// Bundle is the request-scoped carrier threaded through the pipeline. It
// unites the domain object (absent for list operations before fetch), the
// in-progress data mapping, and the request's identity and metadata. A
// bundle is created fresh per operation and never shared across requests.
type Bundle struct {
	// Obj is the domain object being dehydrated or mutated.
	Obj trackable.Object

	// Data is the work-in-progress mapping: cleaned request data on the
	// way in, field-name to value on the way out.
	Data map[string]interface{}

	// Identity is the acting principal.
	Identity trackable.Identity

	// Trusted marks a request originating inside the process, exempt
	// from externally-facing limits.
	Trusted bool
}

// NewBundle creates a bundle for an object and identity.
func NewBundle(obj trackable.Object, identity trackable.Identity) *Bundle {
	return &Bundle{
		Obj:      obj,
		Data:     make(map[string]interface{}),
		Identity: identity,
	}
}

// child creates a bundle for dehydrating a related instance, carrying the
// parent's identity and trust level.
func (b *Bundle) child(obj trackable.Object) *Bundle {
	return &Bundle{
		Obj:      obj,
		Data:     make(map[string]interface{}),
		Identity: b.Identity,
		Trusted:  b.Trusted,
	}
}
