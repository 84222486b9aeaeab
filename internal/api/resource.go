package api

import (
	"context"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
)

// Store is the persistence surface a resource binding needs. It is
// satisfied by SQLStore and by in-memory fakes in tests.
type Store interface {
	// Lookup fetches the object addressed by ids. It returns
	// store.ErrNotFound when nothing matches and store.ErrTooManyResults
	// when the address is ambiguous.
	Lookup(ctx context.Context, ids []int64) (trackable.Mutable, error)

	// List fetches the objects matching q plus the total count before
	// limit and offset are applied.
	List(ctx context.Context, q store.Query) ([]trackable.Object, int, error)

	// Insert persists a new object and backfills its generated id.
	Insert(ctx context.Context, obj trackable.Mutable) error

	// Update persists changes to an existing object.
	Update(ctx context.Context, obj trackable.Mutable) error

	// NewObject returns an empty object ready for hydration.
	NewObject() trackable.Mutable
}

// Actions are the auxiliary operations a resource may expose beyond
// plain CRUD. A nil hook means the corresponding endpoint is not
// routed.
type Actions struct {
	// Merge folds source into target. Both objects have already been
	// looked up and view-checked.
	Merge func(ctx context.Context, target, source trackable.Mutable, identity trackable.Identity) error

	// Unmerge splits a previously merged object apart.
	Unmerge func(ctx context.Context, obj trackable.Mutable, identity trackable.Identity) error
}

// Resource binds a descriptor to its storage and auxiliary actions.
type Resource struct {
	Descriptor *resource.Descriptor
	Store      Store
	Actions    Actions

	// Scopes override the acceptable token scopes for this resource.
	// Empty means the universal scope.
	Scopes []string

	// PrepareQuery, when set, adjusts every list query before it is
	// executed. Bindings use it to pin fixed filters or to widen the
	// ordering.
	PrepareQuery func(identity trackable.Identity, q *store.Query)
}

// SQLStore adapts a store.Collection to the Store interface.
type SQLStore struct {
	Collection *store.Collection
}

// NewSQLStore wraps a collection for use as a resource store.
func NewSQLStore(c *store.Collection) *SQLStore {
	return &SQLStore{Collection: c}
}

func (s *SQLStore) Lookup(ctx context.Context, ids []int64) (trackable.Mutable, error) {
	row, err := s.Collection.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *SQLStore) List(ctx context.Context, q store.Query) ([]trackable.Object, int, error) {
	rows, total, err := s.Collection.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	objects := make([]trackable.Object, len(rows))
	for i, row := range rows {
		objects[i] = row
	}
	return objects, total, nil
}

func (s *SQLStore) Insert(ctx context.Context, obj trackable.Mutable) error {
	row, ok := obj.(*store.Row)
	if !ok {
		return store.ErrInvalidFilter
	}
	return s.Collection.Insert(ctx, row)
}

func (s *SQLStore) Update(ctx context.Context, obj trackable.Mutable) error {
	row, ok := obj.(*store.Row)
	if !ok {
		return store.ErrInvalidFilter
	}
	return s.Collection.Update(ctx, row)
}

func (s *SQLStore) NewObject() trackable.Mutable {
	return store.NewRow(s.Collection.IDColumns())
}
