package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxIdentityKey contextKey = "identity"

// Identity is the authenticated caller, resolved once per request by
// Authenticate and read by handlers and role gates from the context.
type Identity struct {
	Email string
	Role  string
}

// TokenValidator verifies a bearer token and returns the identity it carries.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (email, role string, err error)
}

// Authenticate validates the Authorization bearer token and stores the
// resulting identity in the request context.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
				return
			}
			email, role, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), &Identity{Email: email, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the authenticated role. It runs after
// Authenticate; a missing identity is treated as unauthorized.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromCtx(r.Context())
			if id == nil {
				http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"message":"Forbidden access"}`, http.StatusForbidden)
		})
	}
}

// IdentityFromCtx returns the authenticated identity or nil.
func IdentityFromCtx(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxIdentityKey).(*Identity)
	return id
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
