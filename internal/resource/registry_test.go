package resource

import (
	"context"
	"strings"
	"testing"

	"github.com/mliu7/trackrest/internal/trackable"
)

func validDescriptor(name string) *Descriptor {
	return &Descriptor{
		Name: name,
		Fields: []Field{
			{Name: "title", Kind: FieldScalar},
		},
		NumIDs: 1,
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validDescriptor("jobs")); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if _, ok := r.Get("jobs"); !ok {
		t.Error("registered descriptor not found")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validDescriptor("jobs")); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := r.Register(validDescriptor("jobs")); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistryValidatesAtRegistration(t *testing.T) {
	noopConverter := ConverterFunc(func(ctx context.Context, b *Bundle) (interface{}, error) {
		return nil, nil
	})
	noopAccessor := AccessorFunc(func(ctx context.Context, b *Bundle) (trackable.Object, error) {
		return nil, nil
	})

	tests := []struct {
		name    string
		desc    *Descriptor
		wantErr string
	}{
		{
			name:    "missing name",
			desc:    &Descriptor{NumIDs: 1},
			wantErr: "name is required",
		},
		{
			name:    "bad id count",
			desc:    &Descriptor{Name: "jobs", NumIDs: 3},
			wantErr: "num ids must be 1 or 2",
		},
		{
			name: "duplicate field",
			desc: &Descriptor{
				Name:   "jobs",
				NumIDs: 1,
				Fields: []Field{{Name: "title", Kind: FieldScalar}, {Name: "title", Kind: FieldScalar}},
			},
			wantErr: "duplicate field",
		},
		{
			name: "related field without target",
			desc: &Descriptor{
				Name:      "jobs",
				NumIDs:    1,
				Fields:    []Field{{Name: "organization", Kind: FieldRelatedFull}},
				Accessors: map[string]RelatedAccessor{"organization": noopAccessor},
			},
			wantErr: "needs a target resource",
		},
		{
			name: "related field without accessor",
			desc: &Descriptor{
				Name:   "jobs",
				NumIDs: 1,
				Fields: []Field{{Name: "organization", Kind: FieldRelatedFull, Target: "organizations"}},
			},
			wantErr: "no registered accessor",
		},
		{
			name: "derived field without converter",
			desc: &Descriptor{
				Name:   "jobs",
				NumIDs: 1,
				Fields: []Field{{Name: "popularity", Kind: FieldDerived}},
			},
			wantErr: "no registered converter",
		},
		{
			name: "id sibling collision",
			desc: &Descriptor{
				Name:   "jobs",
				NumIDs: 1,
				Fields: []Field{
					{Name: "organization", Kind: FieldRelatedFull, Target: "organizations"},
					{Name: "organization_id", Kind: FieldScalar},
				},
				Accessors: map[string]RelatedAccessor{"organization": noopAccessor},
			},
			wantErr: "collides",
		},
		{
			name: "converter for undeclared field",
			desc: &Descriptor{
				Name:       "jobs",
				NumIDs:     1,
				Fields:     []Field{{Name: "title", Kind: FieldScalar}},
				Converters: map[string]Converter{"bogus": noopConverter},
			},
			wantErr: "undeclared field",
		},
		{
			name: "order alias with both column and expression",
			desc: &Descriptor{
				Name:         "jobs",
				NumIDs:       1,
				Fields:       []Field{{Name: "title", Kind: FieldScalar}},
				OrderAliases: map[string]OrderAlias{"title": {Column: "title", Expression: "lower(title)"}},
			},
			wantErr: "exactly one",
		},
		{
			name: "order alias with neither column nor expression",
			desc: &Descriptor{
				Name:         "jobs",
				NumIDs:       1,
				Fields:       []Field{{Name: "title", Kind: FieldScalar}},
				OrderAliases: map[string]OrderAlias{"title": {}},
			},
			wantErr: "exactly one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.desc)
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryValidateAll(t *testing.T) {
	noopAccessor := AccessorFunc(func(ctx context.Context, b *Bundle) (trackable.Object, error) {
		return nil, nil
	})

	r := NewRegistry()
	jobs := &Descriptor{
		Name:      "jobs",
		NumIDs:    1,
		Fields:    []Field{{Name: "organization", Kind: FieldRelatedFull, Target: "organizations"}},
		Accessors: map[string]RelatedAccessor{"organization": noopAccessor},
	}
	if err := r.Register(jobs); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	// The target is a forward reference until it is registered.
	if err := r.ValidateAll(); err == nil {
		t.Error("expected error for unregistered relationship target")
	}

	if err := r.Register(validDescriptor("organizations")); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := r.ValidateAll(); err != nil {
		t.Errorf("ValidateAll error = %v", err)
	}
}

func TestRegistryConverterForPermanentField(t *testing.T) {
	conv := ConverterFunc(func(ctx context.Context, b *Bundle) (interface{}, error) {
		return "/custom/", nil
	})
	d := validDescriptor("jobs")
	d.Converters = map[string]Converter{"resource_uri": conv}
	if err := NewRegistry().Register(d); err != nil {
		t.Errorf("converters may target permanent fields: %v", err)
	}
}
