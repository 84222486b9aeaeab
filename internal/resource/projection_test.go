package resource

import (
	"errors"
	"testing"
)

func projectionDescriptor() *Descriptor {
	return &Descriptor{
		Name: "jobs",
		Fields: []Field{
			{Name: "title", Kind: FieldScalar},
			{Name: "info", Kind: FieldScalar},
			{Name: "organization", Kind: FieldRelatedFull, Target: "organizations"},
		},
		NumIDs: 1,
	}
}

func TestComputeProjectionEmptyRequest(t *testing.T) {
	p, err := ComputeProjection(nil, projectionDescriptor())
	if err != nil {
		t.Fatalf("ComputeProjection error = %v", err)
	}
	if p != nil {
		t.Fatalf("empty request should produce a nil projection, got %+v", p)
	}
	// A nil projection includes everything.
	if !p.Include("title") || !p.Include("organization") {
		t.Error("nil projection should include every field")
	}
	if p.IdentifierOnly("organization") {
		t.Error("nil projection should not degrade relationships")
	}
}

func TestComputeProjectionSubset(t *testing.T) {
	p, err := ComputeProjection([]string{"title"}, projectionDescriptor())
	if err != nil {
		t.Fatalf("ComputeProjection error = %v", err)
	}
	if !p.Include("title") {
		t.Error("requested field excluded")
	}
	if p.Include("info") {
		t.Error("unrequested field included")
	}
	if p.Include("organization") {
		t.Error("unrequested relationship included")
	}
}

func TestComputeProjectionInvalidField(t *testing.T) {
	_, err := ComputeProjection([]string{"title", "bogus"}, projectionDescriptor())
	if err == nil {
		t.Fatal("expected invalid-field error")
	}
	var re *Error
	if !errors.As(err, &re) || re.Kind != KindInvalidField {
		t.Fatalf("error = %v, want KindInvalidField", err)
	}
	if re.Message != "Field 'bogus' is not a valid field." {
		t.Errorf("message = %q", re.Message)
	}
}

func TestComputeProjectionPermanentAlwaysKept(t *testing.T) {
	d := projectionDescriptor()
	p, err := ComputeProjection([]string{"title"}, d)
	if err != nil {
		t.Fatalf("ComputeProjection error = %v", err)
	}
	for _, name := range d.PermanentFields() {
		if !p.Include(name) {
			t.Errorf("permanent field %s excluded", name)
		}
	}
	// Permanent names are also valid to request explicitly.
	if _, err := ComputeProjection([]string{"resource_uri"}, d); err != nil {
		t.Errorf("requesting a permanent field failed: %v", err)
	}
}

func TestComputeProjectionIdentifierOnly(t *testing.T) {
	// Requesting organization_id without organization degrades the
	// relationship to its bare identifier.
	p, err := ComputeProjection([]string{"title", "organization_id"}, projectionDescriptor())
	if err != nil {
		t.Fatalf("ComputeProjection error = %v", err)
	}
	if !p.IdentifierOnly("organization") {
		t.Error("organization should be identifier-only")
	}

	// Requesting the relationship itself keeps the full conversion.
	p, err = ComputeProjection([]string{"organization"}, projectionDescriptor())
	if err != nil {
		t.Fatalf("ComputeProjection error = %v", err)
	}
	if p.IdentifierOnly("organization") {
		t.Error("organization should dehydrate fully when requested")
	}
	if !p.Include("organization") {
		t.Error("organization should be included when requested")
	}
}

func TestComputeProjectionIDFieldOnlyForRelationships(t *testing.T) {
	if _, err := ComputeProjection([]string{"title_id"}, projectionDescriptor()); err == nil {
		t.Error("scalar fields should not grow _id siblings")
	}
}
