package trackable

// Identity is the acting principal for a request. A zero UserID with
// IsAnonymous set represents an unauthenticated read-only caller.
type Identity struct {
	// UserID is the authenticated user's identifier.
	UserID int64

	// Scopes are the OAuth-style access scopes the identity holds.
	Scopes []string

	// IsAnonymous marks an unauthenticated identity.
	IsAnonymous bool
}

// Anonymous returns the anonymous identity used when a GET request carries
// no valid credentials.
func Anonymous() Identity {
	return Identity{IsAnonymous: true}
}

// Authenticated reports whether the identity belongs to a real user.
func (i Identity) Authenticated() bool {
	return !i.IsAnonymous && i.UserID != 0
}

// HasScope reports whether the identity holds the given scope.
func (i Identity) HasScope(scope string) bool {
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
