// Package middleware provides the HTTP middleware for the API surface:
// cross-origin headers, request identifiers, request logging, and panic
// recovery.
package middleware

import (
	"net/http"
	"strings"
)

// Middleware is a standard net/http middleware function.
type Middleware func(http.Handler) http.Handler

// CORSConfig holds configuration for the cross-origin middleware.
type CORSConfig struct {
	// AllowedOrigins is the value of Access-Control-Allow-Origin.
	AllowedOrigins string
	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string
	// AllowedHeaders is the list of allowed request headers.
	AllowedHeaders []string
}

// DefaultCORSConfig returns the default cross-origin configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: "*",
		AllowedMethods: []string{"POST", "GET", "OPTIONS", "PUT", "DELETE"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}
}

// CORS creates the cross-origin middleware with default configuration.
func CORS() Middleware {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig creates the cross-origin middleware. Every response
// carries the allow headers. A pre-flight request, identified by the
// method-negotiation header, short-circuits with an empty 200 response
// carrying the same headers.
func CORSWithConfig(config CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setCORSHeaders(w, config)

			if r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setCORSHeaders writes the three allow headers.
func setCORSHeaders(w http.ResponseWriter, config CORSConfig) {
	w.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigins)
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ","))
	w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ","))
}
