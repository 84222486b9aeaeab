package authgate

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mliu7/trackrest/internal/trackable"
)

// JWTValidator validates bearer tokens signed with HS256 and resolves
// their claims to an identity. Tokens carry a numeric user_id and a list
// of granted scopes.
type JWTValidator struct {
	secretKey string
}

// NewJWTValidator creates a JWTValidator with the given signing secret.
func NewJWTValidator(secretKey string) *JWTValidator {
	return &JWTValidator{secretKey: secretKey}
}

// GenerateToken signs a token for the given user and scopes. Used by
// tests and by deployments that mint their own tokens.
func (v *JWTValidator) GenerateToken(userID int64, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"scopes":  scopes,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.secretKey))
}

// Validate implements TokenValidator. The token must be presented as a
// Bearer credential and must grant at least one acceptable scope.
func (v *JWTValidator) Validate(r *http.Request, scopes []string) (trackable.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return trackable.Identity{}, fmt.Errorf("authorization required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return trackable.Identity{}, fmt.Errorf("invalid authorization format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		// Verify exact signing method to prevent algorithm confusion attacks
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secretKey), nil
	})
	if err != nil {
		return trackable.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return trackable.Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return trackable.Identity{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return trackable.Identity{}, fmt.Errorf("invalid token claims")
	}

	var granted []string
	if scopesClaim, ok := claims["scopes"].([]interface{}); ok {
		for _, s := range scopesClaim {
			if str, ok := s.(string); ok {
				granted = append(granted, str)
			}
		}
	}

	if !scopeAcceptable(granted, scopes) {
		return trackable.Identity{}, fmt.Errorf("token does not grant an acceptable scope")
	}

	return trackable.Identity{
		UserID: int64(userID),
		Scopes: granted,
	}, nil
}

// scopeAcceptable reports whether any granted scope is in the acceptable
// set.
func scopeAcceptable(granted, acceptable []string) bool {
	for _, g := range granted {
		for _, a := range acceptable {
			if g == a {
				return true
			}
		}
	}
	return false
}
