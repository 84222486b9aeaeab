package api

import (
	"context"

	"github.com/mliu7/trackrest/internal/authgate"
	"github.com/mliu7/trackrest/internal/paginate"
	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

// reservedParams are list parameters consumed by the pipeline itself.
// Everything else passes to the store as a filter.
var reservedParams = map[string]bool{
	"fields":   true,
	"order_by": true,
	"limit":    true,
	"offset":   true,
	"format":   true,
}

// listOperation runs the full list pipeline: validate, project, resolve
// ordering, fetch, paginate, dehydrate each object.
func (a *API) listOperation(ctx context.Context, res *Resource, identity trackable.Identity, raw map[string]interface{}, trusted bool) (map[string]interface{}, error) {
	desc := res.Descriptor

	schema, ok := desc.Schema(validate.OpList)
	if !ok {
		schema = validate.BaseListSchema(a.maxLimit)
	}
	cleaned, err := schema.Validate(raw, trusted)
	if err != nil {
		return nil, err
	}

	proj, err := resource.ComputeProjection(stringSlice(cleaned["fields"]), desc)
	if err != nil {
		return nil, err
	}

	ordering, err := resource.ResolveOrdering(stringSlice(cleaned["order_by"]), desc)
	if err != nil {
		return nil, err
	}

	limit := a.defaultLimit
	if v, present := cleaned["limit"]; present {
		if n, ok := toInt(v); ok {
			limit = n
		}
	}
	offset := 0
	if n, ok := toInt(cleaned["offset"]); ok {
		offset = n
	}

	filters := make(map[string]interface{})
	for key, value := range cleaned {
		if reservedParams[key] {
			continue
		}
		filters[key] = value
	}

	q := store.Query{
		Filters:  filters,
		Ordering: ordering,
		Limit:    limit,
		Offset:   offset,
		Viewer:   identity,
	}
	if res.PrepareQuery != nil {
		res.PrepareQuery(identity, &q)
	}

	objects, total, err := res.Store.List(ctx, q)
	if err != nil {
		return nil, err
	}

	meta := paginate.New(limit, offset, total, resource.ListURI(desc), a.listParams(cleaned)).Meta()
	a.dehydrator.AbsolutizeURIs(meta)

	records := make([]map[string]interface{}, 0, len(objects))
	for _, obj := range objects {
		data, err := a.dehydrateObject(ctx, desc, obj, identity, proj, trusted)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}

	return map[string]interface{}{
		"meta":    meta,
		"objects": records,
	}, nil
}

// detailOperation fetches, view-checks and dehydrates a single object.
func (a *API) detailOperation(ctx context.Context, res *Resource, identity trackable.Identity, ids []int64, raw map[string]interface{}, trusted bool) (map[string]interface{}, error) {
	desc := res.Descriptor

	schema, ok := desc.Schema(validate.OpGet)
	if !ok {
		schema = validate.BaseGetSchema()
	}
	cleaned, err := schema.Validate(raw, trusted)
	if err != nil {
		return nil, err
	}

	proj, err := resource.ComputeProjection(stringSlice(cleaned["fields"]), desc)
	if err != nil {
		return nil, err
	}

	obj, err := res.Store.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := a.gateFor(res).CanView(obj, identity); err != nil {
		return nil, err
	}

	return a.dehydrateObject(ctx, desc, obj, identity, proj, trusted)
}

// createOperation validates the payload, hydrates a fresh object,
// submits it through the authorization gate and persists it.
func (a *API) createOperation(ctx context.Context, res *Resource, identity trackable.Identity, raw map[string]interface{}, trusted bool) (map[string]interface{}, error) {
	desc := res.Descriptor

	schema, ok := desc.Schema(validate.OpCreate)
	if !ok {
		schema = &validate.Schema{}
	}
	cleaned, err := schema.Validate(raw, trusted)
	if err != nil {
		return nil, err
	}

	obj := res.Store.NewObject()
	hydrate(obj, desc, cleaned)

	action := trackable.ActionSubmit
	if status, _ := cleaned["status"].(string); status == trackable.Hidden.String() {
		action = trackable.ActionSubmitHidden
	}

	ok, err = a.gateFor(res).DoIfAuthorized(ctx, obj, action, identity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, resource.NewError(resource.KindUnauthorized, "You are not authorized to create this object.")
	}

	if err := res.Store.Insert(ctx, obj); err != nil {
		return nil, err
	}

	return a.dehydrateObject(ctx, desc, obj, identity, nil, trusted)
}

// updateOperation validates the payload against the existing object,
// hydrates the changes and persists them through the gate.
func (a *API) updateOperation(ctx context.Context, res *Resource, identity trackable.Identity, ids []int64, raw map[string]interface{}, trusted bool) (map[string]interface{}, error) {
	desc := res.Descriptor

	obj, err := res.Store.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	gate := a.gateFor(res)
	if err := gate.CanView(obj, identity); err != nil {
		return nil, err
	}

	schema, ok := desc.Schema(validate.OpUpdate)
	if !ok {
		schema = &validate.Schema{}
	}
	cleaned, err := schema.Validate(raw, trusted)
	if err != nil {
		return nil, err
	}

	hydrate(obj, desc, cleaned)

	ok, err = gate.DoIfAuthorized(ctx, obj, trackable.ActionEdit, identity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, resource.NewError(resource.KindUnauthorized, "You are not authorized to edit this object.")
	}

	if err := res.Store.Update(ctx, obj); err != nil {
		return nil, err
	}

	return a.dehydrateObject(ctx, desc, obj, identity, nil, trusted)
}

// deleteOperation marks an object removed through the gate. The object
// row survives in storage with its terminal status.
func (a *API) deleteOperation(ctx context.Context, res *Resource, identity trackable.Identity, ids []int64) error {
	obj, err := res.Store.Lookup(ctx, ids)
	if err != nil {
		return err
	}
	gate := a.gateFor(res)
	if err := gate.CanView(obj, identity); err != nil {
		return err
	}

	ok, err := gate.DoIfAuthorized(ctx, obj, trackable.ActionRemove, identity)
	if err != nil {
		return err
	}
	if !ok {
		return resource.NewError(resource.KindUnauthorized, "You are not authorized to remove this object.")
	}

	return res.Store.Update(ctx, obj)
}

// mergeOperation folds the source object into the target via the
// resource's merge hook, then returns the dehydrated target.
func (a *API) mergeOperation(ctx context.Context, res *Resource, identity trackable.Identity, targetID, sourceID int64) (map[string]interface{}, error) {
	gate := a.gateFor(res)

	target, err := res.Store.Lookup(ctx, []int64{targetID})
	if err != nil {
		return nil, err
	}
	if err := gate.CanView(target, identity); err != nil {
		return nil, err
	}

	source, err := res.Store.Lookup(ctx, []int64{sourceID})
	if err != nil {
		return nil, err
	}
	if err := gate.CanView(source, identity); err != nil {
		return nil, err
	}

	if err := res.Actions.Merge(ctx, target, source, identity); err != nil {
		return nil, err
	}

	return a.dehydrateObject(ctx, res.Descriptor, target, identity, nil, false)
}

// unmergeOperation splits a previously merged object apart via the
// resource's unmerge hook.
func (a *API) unmergeOperation(ctx context.Context, res *Resource, identity trackable.Identity, id int64) (map[string]interface{}, error) {
	gate := a.gateFor(res)

	obj, err := res.Store.Lookup(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if err := gate.CanView(obj, identity); err != nil {
		return nil, err
	}

	if err := res.Actions.Unmerge(ctx, obj, identity); err != nil {
		return nil, err
	}

	return a.dehydrateObject(ctx, res.Descriptor, obj, identity, nil, false)
}

// dehydrateObject runs the complete dehydration pipeline for one object.
func (a *API) dehydrateObject(ctx context.Context, desc *resource.Descriptor, obj trackable.Object, identity trackable.Identity, proj *resource.Projection, trusted bool) (map[string]interface{}, error) {
	bundle := resource.NewBundle(obj, identity)
	bundle.Trusted = trusted
	if err := a.dehydrator.Dehydrate(ctx, bundle, desc, proj); err != nil {
		return nil, err
	}
	return bundle.Data, nil
}

// gateFor returns the authorization gate for a resource, honoring its
// scope overrides.
func (a *API) gateFor(res *Resource) *authgate.Gate {
	if len(res.Scopes) > 0 {
		return authgate.NewWithScopes(a.validator, res.Scopes)
	}
	return authgate.New(a.validator)
}
