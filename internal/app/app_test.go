package app

import (
	"context"
	"testing"
	"time"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/sanitize"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

func TestDescriptorsRegister(t *testing.T) {
	registry := resource.NewRegistry()

	orgDesc := organizationDescriptor(200)
	if err := registry.Register(orgDesc); err != nil {
		t.Fatalf("organizations failed registration: %v", err)
	}

	orgs, err := store.NewCollection(nil, orgDesc, "organizations", nil)
	if err != nil {
		t.Fatalf("organizations collection: %v", err)
	}
	if err := registry.Register(jobDescriptor(orgs, 200)); err != nil {
		t.Fatalf("jobs failed registration: %v", err)
	}

	if err := registry.ValidateAll(); err != nil {
		t.Fatalf("cross-resource validation failed: %v", err)
	}
}

func TestJobOrderingByOrganization(t *testing.T) {
	desc := jobDescriptor(nil, 200)

	for _, key := range []string{"organization_id", "-organization_id"} {
		clauses, err := resource.ResolveOrdering([]string{key}, desc)
		if err != nil {
			t.Fatalf("ResolveOrdering(%q) error = %v", key, err)
		}
		if len(clauses) != 1 || clauses[0].Column != "organization_id" {
			t.Errorf("ResolveOrdering(%q) = %+v, want the organization_id column", key, clauses)
		}
	}
}

func TestJobWriteSchemaRequiredOnCreateOnly(t *testing.T) {
	create := jobWriteSchema(true)
	if _, err := create.Validate(map[string]interface{}{}, false); err == nil {
		t.Error("create without title/organization/start_time should fail")
	}

	update := jobWriteSchema(false)
	cleaned, err := update.Validate(map[string]interface{}{"title": "Shift"}, false)
	if err != nil {
		t.Fatalf("partial update should validate: %v", err)
	}
	if cleaned["title"] != "Shift" {
		t.Errorf("title = %v", cleaned["title"])
	}
	if cleaned["status"] != "live" {
		t.Errorf("status = %v, want defaulted live", cleaned["status"])
	}
}

func TestOrganizationTimestampFields(t *testing.T) {
	registry := resource.NewRegistry()
	desc := organizationDescriptor(200)
	if err := registry.Register(desc); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	dh := resource.NewDehydrator(registry, sanitize.New(), "https://api.test")

	submitted := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	acted := time.Date(2023, 8, 15, 9, 30, 0, 0, time.UTC)

	row := store.NewRow(nil)
	row.SetAttr("id", int64(4))
	row.SetAttr("name", "Acme")
	row.SetAttr("status", "live")
	row.SetAttr("submitted_time", submitted)

	bundle := resource.NewBundle(row, trackable.Anonymous())
	if err := dh.Dehydrate(context.Background(), bundle, desc, nil); err != nil {
		t.Fatalf("Dehydrate error = %v", err)
	}
	if bundle.Data["time_created"] != "2023-05-01T12:00:00+00:00" {
		t.Errorf("time_created = %v", bundle.Data["time_created"])
	}
	// Never edited: last updated falls back to the submission instant.
	if bundle.Data["time_last_updated"] != "2023-05-01T12:00:00+00:00" {
		t.Errorf("time_last_updated = %v", bundle.Data["time_last_updated"])
	}

	row.SetAttr("action_time", acted)
	bundle = resource.NewBundle(row, trackable.Anonymous())
	if err := dh.Dehydrate(context.Background(), bundle, desc, nil); err != nil {
		t.Fatalf("Dehydrate error = %v", err)
	}
	if bundle.Data["time_last_updated"] != "2023-08-15T09:30:00+00:00" {
		t.Errorf("time_last_updated = %v", bundle.Data["time_last_updated"])
	}
}

func TestOrganizationWriteSchemaRejectsBadWebsite(t *testing.T) {
	schema := organizationWriteSchema(true)
	_, err := schema.Validate(map[string]interface{}{
		"name":        "Acme",
		"website_uri": "not a url",
	}, false)
	ve, ok := err.(*validate.ValidationErrors)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := ve.Fields["website_uri"]; !ok {
		t.Errorf("expected website_uri error, got %v", ve.Fields)
	}
}
