package app

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/mliu7/trackrest/internal/api"
	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

var orgNamePattern = regexp.MustCompile(`^.{1,200}$`)

// organizationColumns is the organizations table schema.
var organizationColumns = []string{
	"id", "name", "short_name", "info", "website_uri",
	"status", "owner_id", "submitted_time", "action_time", "merged_into_id",
}

// organizationDescriptor declares the organizations resource: a plain
// single-key resource with an HTML info field and a computed ordering
// key for how many jobs reference each organization.
func organizationDescriptor(maxLimit int) *resource.Descriptor {
	return &resource.Descriptor{
		Name: "organizations",
		Fields: []resource.Field{
			{Name: "name", Kind: resource.FieldScalar},
			{Name: "short_name", Kind: resource.FieldScalar},
			{Name: "info", Kind: resource.FieldScalar},
			{Name: "website_uri", Kind: resource.FieldScalar},
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
		DontEscape: []string{"website_uri"},
		OrderAliases: map[string]resource.OrderAlias{
			"name": {Column: "name"},
			"job_count": {
				Expression: "(SELECT COUNT(*) FROM jobs WHERE jobs.organization_id = organizations.id)",
			},
		},
		StorageColumns: organizationColumns,
		NumIDs:         1,
		Schemas: map[validate.Operation]*validate.Schema{
			validate.OpGet:    validate.BaseGetSchema(),
			validate.OpList:   validate.BaseListSchema(maxLimit),
			validate.OpCreate: organizationWriteSchema(true),
			validate.OpUpdate: organizationWriteSchema(false),
		},
	}
}

// organizationWriteSchema validates POST and PUT bodies. Name is only
// required on create; updates may change a subset of fields.
func organizationWriteSchema(create bool) *validate.Schema {
	return &validate.Schema{
		Fields: map[string]validate.FieldValidator{
			"name":        &validate.RegexField{Pattern: orgNamePattern, Required: create},
			"short_name":  &validate.RegexField{Pattern: regexp.MustCompile(`^.{1,50}$`)},
			"info":        &validate.RegexField{Pattern: regexp.MustCompile(`(?s)^.*$`), MaxLength: 20000},
			"website_uri": &validate.RegexField{Pattern: regexp.MustCompile(`^https?://\S+$`), Message: "enter a valid URL"},
			"status":      &validate.RegexField{Pattern: regexp.MustCompile(`^(live|hidden)$`)},
		},
		Defaults: map[string]interface{}{"status": "live"},
	}
}

// organizationResource binds the organizations descriptor to its table
// and wires the merge and unmerge actions.
func organizationResource(db *sql.DB, maxLimit int) (*api.Resource, error) {
	desc := organizationDescriptor(maxLimit)
	col, err := store.NewCollection(db, desc, "organizations", nil)
	if err != nil {
		return nil, err
	}
	return &api.Resource{
		Descriptor: desc,
		Store:      api.NewSQLStore(col),
		Actions: api.Actions{
			Merge:   mergeOrganizations(db),
			Unmerge: unmergeOrganization(db),
		},
		// Lists never include a redirected organization, whatever its
		// status ends up as.
		PrepareQuery: func(identity trackable.Identity, q *store.Query) {
			q.Filters["merged_into_id"] = nil
		},
	}, nil
}

// mergeOrganizations folds the source organization into the target:
// every job pointing at the source is repointed, the source records
// where it went and is removed. The source row survives so the
// redirect can be resolved later.
func mergeOrganizations(db *sql.DB) func(ctx context.Context, target, source trackable.Mutable, identity trackable.Identity) error {
	return func(ctx context.Context, target, source trackable.Mutable, identity trackable.Identity) error {
		if _, err := db.ExecContext(ctx,
			"UPDATE jobs SET organization_id = $1 WHERE organization_id = $2",
			target.ID(), source.ID()); err != nil {
			return store.ConvertDBError(err)
		}
		source.SetAttr("merged_into_id", target.ID())
		if err := source.Apply(ctx, trackable.ActionRemove, identity); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			"UPDATE organizations SET status = $1, merged_into_id = $2 WHERE id = $3",
			trackable.Removed.String(), target.ID(), source.ID()); err != nil {
			return store.ConvertDBError(err)
		}
		return nil
	}
}

// unmergeOrganization reverses a merge: the organization comes back
// live and drops its redirect. Jobs stay where the merge moved them.
func unmergeOrganization(db *sql.DB) func(ctx context.Context, obj trackable.Mutable, identity trackable.Identity) error {
	return func(ctx context.Context, obj trackable.Mutable, identity trackable.Identity) error {
		if v, ok := obj.Attr("merged_into_id"); !ok || v == nil {
			return resource.NewError(resource.KindMalformedInput, "This organization was never merged.")
		}
		if _, err := db.ExecContext(ctx,
			"UPDATE organizations SET status = $1, merged_into_id = NULL WHERE id = $2",
			trackable.Live.String(), obj.ID()); err != nil {
			return store.ConvertDBError(err)
		}
		obj.SetAttr("status", trackable.Live.String())
		obj.SetAttr("merged_into_id", nil)
		return nil
	}
}
