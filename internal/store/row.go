package store

import (
	"context"
	"time"

	"github.com/mliu7/trackrest/internal/trackable"
)

// Row is a stored trackable object backed by a column map. It implements
// the domain contract, including the visibility state machine: live and
// hidden objects accept transitions from their owner, removed is terminal.
type Row struct {
	cols      map[string]interface{}
	idColumns []string
	now       func() time.Time
}

// NewRow creates an empty row keyed by the given identifier columns.
func NewRow(idColumns []string) *Row {
	if len(idColumns) == 0 {
		idColumns = []string{"id"}
	}
	return &Row{
		cols:      make(map[string]interface{}),
		idColumns: idColumns,
		now:       time.Now,
	}
}

// ID implements trackable.Object.
func (r *Row) ID() int64 {
	id, _ := toInt64(r.cols[r.idColumns[0]])
	return id
}

// IDs implements trackable.Object.
func (r *Row) IDs() []int64 {
	ids := make([]int64, len(r.idColumns))
	for i, col := range r.idColumns {
		ids[i], _ = toInt64(r.cols[col])
	}
	return ids
}

// Attr implements trackable.Object.
func (r *Row) Attr(name string) (interface{}, bool) {
	v, ok := r.cols[name]
	return v, ok
}

// SetAttr implements trackable.Mutable.
func (r *Row) SetAttr(name string, value interface{}) {
	r.cols[name] = value
}

// Columns returns the underlying column map.
func (r *Row) Columns() map[string]interface{} {
	return r.cols
}

// OwnerID returns the owning user's id, or zero when unowned.
func (r *Row) OwnerID() int64 {
	owner, _ := toInt64(r.cols["owner_id"])
	return owner
}

// Visibility implements trackable.Object.
func (r *Row) Visibility() trackable.Visibility {
	status, _ := r.cols["status"].(string)
	v, err := trackable.ParseVisibility(status)
	if err != nil {
		return trackable.Hidden
	}
	return v
}

// HasViewPerm implements trackable.Object: live objects are visible to
// everyone, hidden and removed objects only to their owner (and a removed
// object still answers Gone at the gate even for its owner's reads).
func (r *Row) HasViewPerm(identity trackable.Identity) bool {
	switch r.Visibility() {
	case trackable.Live:
		return true
	case trackable.Hidden:
		return r.ownedBy(identity)
	default:
		return false
	}
}

// Apply implements trackable.Object. Removed is terminal: every
// transition on a removed object fails. Submit variants claim ownership
// for the acting identity; edit and remove require it.
func (r *Row) Apply(ctx context.Context, action trackable.Action, identity trackable.Identity) error {
	if r.Visibility() == trackable.Removed {
		return trackable.ErrRemoved
	}

	switch action {
	case trackable.ActionSubmit, trackable.ActionSubmitHidden:
		if !identity.Authenticated() {
			return trackable.ErrUnauthorized
		}
		if owner := r.OwnerID(); owner != 0 && owner != identity.UserID {
			return trackable.ErrUnauthorized
		}
		r.cols["owner_id"] = identity.UserID
		if action == trackable.ActionSubmit {
			r.cols["status"] = trackable.Live.String()
		} else {
			r.cols["status"] = trackable.Hidden.String()
		}
		if r.cols["submitted_time"] == nil {
			r.cols["submitted_time"] = r.now().UTC()
		}
		return nil

	case trackable.ActionEdit:
		if !r.ownedBy(identity) {
			return trackable.ErrUnauthorized
		}
		r.cols["action_time"] = r.now().UTC()
		return nil

	case trackable.ActionRemove:
		if !r.ownedBy(identity) {
			return trackable.ErrUnauthorized
		}
		r.cols["status"] = trackable.Removed.String()
		r.cols["action_time"] = r.now().UTC()
		return nil

	default:
		return trackable.ErrUnauthorized
	}
}

// ownedBy reports whether the identity owns this row.
func (r *Row) ownedBy(identity trackable.Identity) bool {
	return identity.Authenticated() && r.OwnerID() == identity.UserID
}

// toInt64 normalizes the integer types database drivers hand back.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		var out int64
		for _, c := range n {
			if c < '0' || c > '9' {
				return 0, false
			}
			out = out*10 + int64(c-'0')
		}
		return out, true
	default:
		return 0, false
	}
}
