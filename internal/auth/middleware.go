package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxIdentityKey contextKey = "identity"

// RequireUser authenticates the request by validating the Bearer token and
// putting the resolved Identity into the request context.
func RequireUser(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := identify(r, svc)
			if ident == nil {
				http.Error(w, `{"error":"missing or invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireAdmin is RequireUser plus an admin-flag check.
func RequireAdmin(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := identify(r, svc)
			if ident == nil {
				http.Error(w, `{"error":"missing or invalid token"}`, http.StatusUnauthorized)
				return
			}
			if !ident.IsAdmin {
				http.Error(w, `{"error":"admin only"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// IdentityFromCtx returns the authenticated caller or nil.
func IdentityFromCtx(ctx context.Context) *Identity {
	ident, _ := ctx.Value(ctxIdentityKey).(*Identity)
	return ident
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, ident)
}

func identify(r *http.Request, svc Service) *Identity {
	raw := extractBearer(r)
	if raw == "" {
		return nil
	}
	ident, err := svc.ValidateToken(r.Context(), raw)
	if err != nil {
		return nil
	}
	return ident
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
