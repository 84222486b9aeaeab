package api

import (
	"context"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/trackable"
)

// InternalClient is the trusted in-process access path. Callers inside
// the server reach resources without HTTP, with the same validation and
// authorization pipeline, but exempt from the external limit ceiling.
type InternalClient struct {
	api *API
}

// Internal returns the trusted in-process client.
func (a *API) Internal() *InternalClient {
	return &InternalClient{api: a}
}

// resourceByName resolves a registered resource.
func (c *InternalClient) resourceByName(name string) (*Resource, error) {
	res, ok := c.api.resources[name]
	if !ok {
		return nil, resource.Errorf(resource.KindNotFound, "No resource named '%s' is registered.", name)
	}
	return res, nil
}

// List runs the list pipeline on behalf of identity. params take the
// same keys as list query parameters.
func (c *InternalClient) List(ctx context.Context, name string, identity trackable.Identity, params map[string]interface{}) (map[string]interface{}, error) {
	res, err := c.resourceByName(name)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return c.api.listOperation(ctx, res, identity, params, true)
}

// Detail fetches one object through the full read pipeline.
func (c *InternalClient) Detail(ctx context.Context, name string, identity trackable.Identity, ids []int64, params map[string]interface{}) (map[string]interface{}, error) {
	res, err := c.resourceByName(name)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return c.api.detailOperation(ctx, res, identity, ids, params, true)
}

// Create runs the create pipeline on behalf of identity.
func (c *InternalClient) Create(ctx context.Context, name string, identity trackable.Identity, data map[string]interface{}) (map[string]interface{}, error) {
	res, err := c.resourceByName(name)
	if err != nil {
		return nil, err
	}
	return c.api.createOperation(ctx, res, identity, data, true)
}

// Update runs the update pipeline on behalf of identity.
func (c *InternalClient) Update(ctx context.Context, name string, identity trackable.Identity, ids []int64, data map[string]interface{}) (map[string]interface{}, error) {
	res, err := c.resourceByName(name)
	if err != nil {
		return nil, err
	}
	return c.api.updateOperation(ctx, res, identity, ids, data, true)
}

// Delete runs the delete pipeline on behalf of identity.
func (c *InternalClient) Delete(ctx context.Context, name string, identity trackable.Identity, ids []int64) error {
	res, err := c.resourceByName(name)
	if err != nil {
		return err
	}
	return c.api.deleteOperation(ctx, res, identity, ids)
}

// Dehydrate renders an object the caller already holds, either as the
// complete representation or the compact partial one.
func (c *InternalClient) Dehydrate(ctx context.Context, name string, identity trackable.Identity, obj trackable.Object, full bool) (map[string]interface{}, error) {
	res, err := c.resourceByName(name)
	if err != nil {
		return nil, err
	}
	desc := res.Descriptor
	bundle := resource.NewBundle(obj, identity)
	bundle.Trusted = true
	if full {
		err = c.api.dehydrator.Dehydrate(ctx, bundle, desc, nil)
	} else {
		err = c.api.dehydrator.PartialDehydrate(ctx, bundle, desc)
	}
	if err != nil {
		return nil, err
	}
	return bundle.Data, nil
}
