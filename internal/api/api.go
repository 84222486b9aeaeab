// Package api is the HTTP surface of the resource layer: a chi router
// exposing list, detail, create, update, delete and the merge/unmerge
// auxiliary actions for every registered resource, plus an in-process
// client for trusted internal callers.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mliu7/trackrest/internal/api/middleware"
	"github.com/mliu7/trackrest/internal/authgate"
	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/sanitize"
)

// Config carries the API-wide settings.
type Config struct {
	// BaseURL prefixes every URI the dehydrator emits.
	BaseURL string

	// DefaultLimit is the page size when the caller supplies none.
	DefaultLimit int

	// MaxLimit is the page size ceiling for external callers.
	MaxLimit int

	// Logger receives request and error logs.
	Logger zerolog.Logger

	// TokenValidator resolves request credentials to identities.
	TokenValidator authgate.TokenValidator

	// CORS configures the cross-origin middleware.
	CORS middleware.CORSConfig
}

// DefaultConfig returns the standard API settings.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 100,
		MaxLimit:     200,
		CORS:         middleware.DefaultCORSConfig(),
	}
}

// API holds the registered resources and their shared collaborators.
type API struct {
	registry     *resource.Registry
	dehydrator   *resource.Dehydrator
	validator    authgate.TokenValidator
	resources    map[string]*Resource
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
	cors         middleware.CORSConfig
}

// New creates an empty API. Resources are added with Register.
func New(cfg Config) *API {
	registry := resource.NewRegistry()
	return &API{
		registry:     registry,
		dehydrator:   resource.NewDehydrator(registry, sanitize.New(), cfg.BaseURL),
		validator:    cfg.TokenValidator,
		resources:    make(map[string]*Resource),
		logger:       cfg.Logger,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		cors:         cfg.CORS,
	}
}

// Register adds a resource binding. Descriptor faults surface here, at
// startup, never at request time.
func (a *API) Register(res *Resource) error {
	if res.Store == nil {
		return fmt.Errorf("resource %s: no store", res.Descriptor.Name)
	}
	if err := a.registry.Register(res.Descriptor); err != nil {
		return err
	}
	a.resources[res.Descriptor.Name] = res
	return nil
}

// Registry exposes the descriptor registry for wiring related resources.
func (a *API) Registry() *resource.Registry {
	return a.registry
}

// Handler builds the HTTP router for every registered resource. It
// fails when a descriptor references an unregistered relationship
// target.
func (a *API) Handler() (http.Handler, error) {
	if err := a.registry.ValidateAll(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.CORSWithConfig(a.cors))

	for name, res := range a.resources {
		a.mountResource(r, name, res)
	}
	return r, nil
}

// mountResource wires one resource's endpoints.
func (a *API) mountResource(r chi.Router, name string, res *Resource) {
	r.Route("/"+name, func(r chi.Router) {
		r.Get("/", a.handleList(res))
		r.Post("/", a.handleCreate(res))

		switch res.Descriptor.NumIDs {
		case 2:
			r.Get("/{id1:[0-9]+}/{id2:[0-9]+}/", a.handleDetail(res))
			r.Put("/{id1:[0-9]+}/{id2:[0-9]+}/", a.handleUpdate(res))
			r.Delete("/{id1:[0-9]+}/{id2:[0-9]+}/", a.handleDelete(res))
		default:
			r.Get("/{id:[0-9]+}/", a.handleDetail(res))
			r.Put("/{id:[0-9]+}/", a.handleUpdate(res))
			r.Delete("/{id:[0-9]+}/", a.handleDelete(res))

			if res.Actions.Merge != nil {
				r.Post("/merge/{id1:[0-9]+}/{id2:[0-9]+}/", a.handleMerge(res))
			}
			if res.Actions.Unmerge != nil {
				r.Post("/unmerge/{id:[0-9]+}/", a.handleUnmerge(res))
			}
		}
	})
}
