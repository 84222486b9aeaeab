// Package trackable defines the domain-object contract shared by every
// resource in the API layer: attribute access, a live/hidden/removed
// visibility lifecycle, per-object ownership checks, and the verb-gated
// transitions (submit, edit, remove) that mutate that lifecycle.
package trackable

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned by an object transition when the acting
// identity is not allowed to perform that transition on this object.
var ErrUnauthorized = errors.New("identity is not authorized for this action")

// ErrRemoved is returned when a transition is attempted on a removed
// object. Removed is a terminal state; no transition leaves it.
var ErrRemoved = errors.New("object has been removed")

// Visibility represents the lifecycle state of a trackable object.
type Visibility int

const (
	// Live objects are visible to everyone.
	Live Visibility = iota
	// Hidden objects are visible only to their owner.
	Hidden
	// Removed objects are gone. This state is terminal.
	Removed
)

// String returns the string representation of the visibility state.
func (v Visibility) String() string {
	switch v {
	case Live:
		return "live"
	case Hidden:
		return "hidden"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// ParseVisibility converts a stored status string to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "live":
		return Live, nil
	case "hidden":
		return Hidden, nil
	case "removed":
		return Removed, nil
	default:
		return 0, errors.New("unknown visibility: " + s)
	}
}

// Action is a verb-gated object transition.
type Action string

const (
	// ActionSubmit creates a live object.
	ActionSubmit Action = "submit"
	// ActionSubmitHidden creates a hidden object.
	ActionSubmitHidden Action = "submit_hidden"
	// ActionEdit updates an existing object.
	ActionEdit Action = "edit"
	// ActionRemove removes an object. The transition is irreversible.
	ActionRemove Action = "remove"
)

// Object is the contract every trackable domain object satisfies. The API
// core never inspects concrete domain types; it reads attributes through
// Attr and delegates lifecycle transitions to the object itself, which may
// refuse them with ErrUnauthorized.
type Object interface {
	// ID returns the primary identifier.
	ID() int64

	// IDs returns the identifying keys, in path order. Length is 1 or 2.
	IDs() []int64

	// Attr returns the named attribute and whether it exists.
	Attr(name string) (interface{}, bool)

	// Visibility returns the current lifecycle state.
	Visibility() Visibility

	// HasViewPerm reports whether the identity may read this object.
	HasViewPerm(identity Identity) bool

	// Apply performs a lifecycle transition on behalf of the identity.
	// Returns ErrUnauthorized if the identity may not perform it, or
	// ErrRemoved if the object is already in the terminal state.
	Apply(ctx context.Context, action Action, identity Identity) error
}

// Mutable is implemented by objects that accept attribute writes during
// hydration. Objects that do not implement it cannot be created or updated
// through the API.
type Mutable interface {
	Object

	// SetAttr sets the named attribute.
	SetAttr(name string, value interface{})
}
