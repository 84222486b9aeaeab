// Package app wires the concrete resources of the job-tracking API:
// descriptors, storage collections, validation schemas and auxiliary
// actions, assembled into a servable API.
package app

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/mliu7/trackrest/internal/api"
	"github.com/mliu7/trackrest/internal/api/middleware"
	"github.com/mliu7/trackrest/internal/authgate"
	"github.com/mliu7/trackrest/internal/config"
	"github.com/mliu7/trackrest/internal/store"
)

// BuildAPI assembles the API from configuration and a database handle.
// Descriptor faults surface here, before the server starts listening.
func BuildAPI(cfg *config.Config, db *sql.DB, logger zerolog.Logger) (*api.API, error) {
	a := api.New(api.Config{
		BaseURL:        cfg.Server.BaseURL,
		DefaultLimit:   cfg.API.DefaultLimit,
		MaxLimit:       cfg.API.MaxLimit,
		Logger:         logger,
		TokenValidator: authgate.NewJWTValidator(cfg.Auth.JWTSecret),
		CORS:           middleware.DefaultCORSConfig(),
	})

	orgs, err := organizationResource(db, cfg.API.MaxLimit)
	if err != nil {
		return nil, err
	}
	if err := a.Register(orgs); err != nil {
		return nil, err
	}

	orgCollection, err := store.NewCollection(db, orgs.Descriptor, "organizations", nil)
	if err != nil {
		return nil, err
	}
	jobs, err := jobResource(db, orgCollection, cfg.API.MaxLimit)
	if err != nil {
		return nil, err
	}
	if err := a.Register(jobs); err != nil {
		return nil, err
	}

	return a, nil
}
