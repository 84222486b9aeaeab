// Package authgate decides, per HTTP verb and per object, whether the
// acting identity may perform an action, and performs object lifecycle
// transitions only when authorized. Authentication is delegated to a
// TokenValidator collaborator; GET requests degrade to an anonymous
// identity when validation fails, every other verb fails outright.
package authgate

import (
	"context"
	"errors"
	"net/http"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/trackable"
)

// ScopeUniversal is the default acceptable scope when a resource does not
// override its scope set.
const ScopeUniversal = "universal"

// TokenValidator resolves a request's credentials to an identity when the
// credentials grant at least one of the acceptable scopes.
type TokenValidator interface {
	Validate(r *http.Request, scopes []string) (trackable.Identity, error)
}

// Gate is the authorization decision procedure for one resource. Gates
// are immutable and safe for concurrent use.
type Gate struct {
	validator TokenValidator
	scopes    []string
}

// New creates a gate using the universal scope.
func New(validator TokenValidator) *Gate {
	return NewWithScopes(validator, []string{ScopeUniversal})
}

// NewWithScopes creates a gate with a resource-specific scope set.
func NewWithScopes(validator TokenValidator, scopes []string) *Gate {
	return &Gate{validator: validator, scopes: scopes}
}

// Authenticate resolves the request to an identity. If validation fails,
// GET requests degrade to the anonymous identity, read-only and still
// subject to visibility rules; all other verbs fail unauthenticated.
func (g *Gate) Authenticate(r *http.Request) (trackable.Identity, error) {
	identity, err := g.validator.Validate(r, g.scopes)
	if err == nil {
		return identity, nil
	}
	if r.Method == http.MethodGet {
		return trackable.Anonymous(), nil
	}
	return trackable.Identity{}, resource.NewError(resource.KindUnauthenticated, err.Error())
}

// AuthorizeVerb performs the coarse verb-level check: GET is always
// allowed; POST, PUT and DELETE require an authenticated identity.
func (g *Gate) AuthorizeVerb(method string, identity trackable.Identity) error {
	switch method {
	case http.MethodGet:
		return nil
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if identity.Authenticated() {
			return nil
		}
		return resource.NewError(resource.KindUnauthenticated, "You must be authenticated to perform this action.")
	default:
		return resource.Errorf(resource.KindUnauthorized, "Method %s is not allowed.", method)
	}
}

// CanView runs the read-access decision procedure for an existing object,
// in order: not found, explicit view permission, hidden without
// permission, removed, generic denial.
func (g *Gate) CanView(obj trackable.Object, identity trackable.Identity) error {
	if obj == nil {
		return resource.NewError(resource.KindNotFound, "A resource with this id could not be found.")
	}
	if obj.HasViewPerm(identity) {
		return nil
	}
	switch obj.Visibility() {
	case trackable.Hidden:
		return resource.NewError(resource.KindUnauthorized,
			"You are not authorized to access this resource because the owner has marked it as hidden.")
	case trackable.Removed:
		return resource.NewError(resource.KindGone,
			"This resource has been removed and is no longer accessible.")
	default:
		return resource.NewError(resource.KindUnauthorized, "You are not authorized to access this resource.")
	}
}

// DoIfAuthorized performs an object lifecycle transition if the identity
// passes the object-level check, which is distinct from the coarser
// verb-level check. An unauthorized identity makes this a no-op: ok is
// false and no error is returned, leaving the caller to decide how to
// surface the denial. A transition the object itself refuses surfaces as
// a denial, never a retry.
func (g *Gate) DoIfAuthorized(ctx context.Context, obj trackable.Object, action trackable.Action, identity trackable.Identity) (ok bool, err error) {
	if !identity.Authenticated() {
		return false, nil
	}

	if err := obj.Apply(ctx, action, identity); err != nil {
		if errors.Is(err, trackable.ErrUnauthorized) || errors.Is(err, trackable.ErrRemoved) {
			return false, resource.Errorf(resource.KindUnauthorized,
				"You are not authorized to %s this object", string(action))
		}
		return false, err
	}
	return true, nil
}
