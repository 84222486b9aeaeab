package app

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/mliu7/trackrest/internal/api"
	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

// jobColumns is the jobs table schema.
var jobColumns = []string{
	"id", "title", "info", "organization_id",
	"start_time", "end_time", "start_time_of_day", "timezone",
	"status", "owner_id", "submitted_time", "action_time",
}

// jobDescriptor declares the jobs resource. The organization field is a
// full relationship: listing jobs embeds the complete organization
// representation, recursively dehydrated.
func jobDescriptor(orgs *store.Collection, maxLimit int) *resource.Descriptor {
	return &resource.Descriptor{
		Name: "jobs",
		Fields: []resource.Field{
			{Name: "title", Kind: resource.FieldScalar},
			{Name: "info", Kind: resource.FieldScalar},
			{Name: "organization", Kind: resource.FieldRelatedFull, Target: "organizations"},
			{Name: "start_time", Kind: resource.FieldScalar},
			{Name: "end_time", Kind: resource.FieldScalar},
			{Name: "start_time_of_day", Kind: resource.FieldScalar},
			{Name: "timezone", Kind: resource.FieldScalar},
			{Name: "status", Kind: resource.FieldScalar},
			{Name: "submitted_time", Kind: resource.FieldScalar},
			{Name: "time_created", Kind: resource.FieldDerived},
			{Name: "time_last_updated", Kind: resource.FieldDerived},
		},
		Converters: map[string]resource.Converter{
			"time_created":      timeCreated(),
			"time_last_updated": timeLastUpdated(),
		},
		HTMLFields: []string{"info"},
		OrderAliases: map[string]resource.OrderAlias{
			"start_time": {Column: "start_time"},
			"duration":   {Expression: "(end_time - start_time)"},
		},
		StorageColumns: jobColumns,
		NumIDs:         1,
		Accessors: map[string]resource.RelatedAccessor{
			"organization": organizationAccessor(orgs),
		},
		Schemas: map[validate.Operation]*validate.Schema{
			validate.OpGet:    validate.BaseGetSchema(),
			validate.OpList:   validate.BaseListSchema(maxLimit),
			validate.OpCreate: jobWriteSchema(true),
			validate.OpUpdate: jobWriteSchema(false),
		},
	}
}

// jobWriteSchema validates POST and PUT bodies.
func jobWriteSchema(create bool) *validate.Schema {
	return &validate.Schema{
		Fields: map[string]validate.FieldValidator{
			"title":             &validate.RegexField{Pattern: regexp.MustCompile(`^.{1,200}$`), Required: create},
			"info":              &validate.RegexField{Pattern: regexp.MustCompile(`(?s)^.*$`), MaxLength: 20000},
			"organization_id":   &validate.IntField{Required: create, Min: 1, MinSet: true},
			"start_time":        &validate.ISODateTimeField{Required: create},
			"end_time":          &validate.ISODateTimeField{},
			"start_time_of_day": &validate.TimeOfDayField{},
			"status":            &validate.RegexField{Pattern: regexp.MustCompile(`^(live|hidden)$`)},
		},
		Defaults: map[string]interface{}{"status": "live"},
	}
}

// organizationAccessor resolves a job's organization by its foreign
// key. A missing key or a dangling reference resolves to no instance,
// never an error: a job whose organization is gone still dehydrates.
func organizationAccessor(orgs *store.Collection) resource.AccessorFunc {
	return func(ctx context.Context, b *resource.Bundle) (trackable.Object, error) {
		raw, ok := b.Obj.Attr("organization_id")
		if !ok || raw == nil {
			return nil, nil
		}
		id, ok := attrInt64(raw)
		if !ok {
			return nil, nil
		}
		row, err := orgs.Lookup(ctx, []int64{id})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return row, nil
	}
}

// jobResource binds the jobs descriptor to its table.
func jobResource(db *sql.DB, orgs *store.Collection, maxLimit int) (*api.Resource, error) {
	desc := jobDescriptor(orgs, maxLimit)
	col, err := store.NewCollection(db, desc, "jobs", nil)
	if err != nil {
		return nil, err
	}
	return &api.Resource{
		Descriptor: desc,
		Store:      api.NewSQLStore(col),
	}, nil
}

// attrInt64 coerces a stored foreign key value.
func attrInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
