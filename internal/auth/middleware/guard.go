// Package middleware guards routes by session token and role
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gradesystem/backend/internal/auth/service"
	"github.com/gradesystem/backend/internal/models"
)

// TokenVerifier decodes a session token into its claims
type TokenVerifier interface {
	Verify(tokenString string) (*service.SessionClaims, error)
}

type contextKey string

const claimsKey contextKey = "sessionClaims"

// Authorize extracts the bearer token from r, verifies it and checks that its role equals requiredRole.
// An empty requiredRole accepts any valid role.
// Missing header, wrong scheme, invalid token and role mismatch all return models.ErrUnauthorized.
func Authorize(tokens TokenVerifier, r *http.Request, requiredRole models.Role) (*service.SessionClaims, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	if requiredRole != "" && claims.Role != requiredRole {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}

// RequireRole rejects requests whose session token does not carry exactly requiredRole
func RequireRole(tokens TokenVerifier, requiredRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := Authorize(tokens, r, requiredRole)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a valid session token, whatever its role
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return RequireRole(tokens, "")
}

// ClaimsFromContext retrieves the claims stored by RequireRole
func ClaimsFromContext(ctx context.Context) (*service.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.SessionClaims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *service.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Expected format: "Bearer <token>"
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
