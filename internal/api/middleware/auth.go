package middleware

import (
	"context"
	"net/http"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity trusts the headers set by the upstream authentication layer.
// This service never sees credentials; it only reads the resolved user.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		role := models.Role(r.Header.Get("X-User-Role"))
		if !role.Valid() {
			role = models.RoleCustomer
		}
		if userID != "" {
			ctx := context.WithValue(r.Context(), identityKey, models.Identity{
				UserID: userID,
				Role:   role,
			})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFrom extracts the resolved caller, if any.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// RequireUser rejects requests with no resolved identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			http.Error(w, `{"success":false,"message":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone below admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			http.Error(w, `{"success":false,"message":"admin access required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
