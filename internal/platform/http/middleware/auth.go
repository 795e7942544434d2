package middleware

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/authz"
)

const anonymousID = "anonymous"

type principalKey struct{}

// Principal is whoever is calling: an authority holding the API key, or a reporter.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) ReporterRole() domain.ReporterRole {
	return domain.ReporterRole(p.Role)
}

// Anonymous reports whether the caller sent no credentials.
func (p Principal) Anonymous() bool {
	return p.ID == anonymousID
}

// PrincipalFrom returns the caller stored by Authenticate, or an anonymous citizen.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Principal{ID: anonymousID, Role: string(domain.RoleCitizen)}
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Authenticate resolves the caller from X-API-Key or a bearer token.
// Requests with neither are anonymous citizens; bad credentials are rejected.
func Authenticate(apiKey string, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientKey := r.Header.Get("X-API-Key"); clientKey != "" {
				if apiKey == "" || subtle.ConstantTimeCompare([]byte(clientKey), []byte(apiKey)) != 1 {
					http.Error(w, "Unauthorized: Invalid API Key", http.StatusUnauthorized)
					return
				}
				p := Principal{ID: authz.RoleAuthority, Role: authz.RoleAuthority}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "Unauthorized: expected a Bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(strings.TrimSpace(raw), jwtSecret)
			if err != nil {
				log.Printf("⚠️  Rejected bearer token: %v", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			p := Principal{ID: claims.Subject, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Require lets the request through only when the caller's role may perform action.
func Require(enforcer *authz.Enforcer, action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if !enforcer.Allowed(p.Role, action) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
