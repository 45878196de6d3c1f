package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

func identityEcho(t *testing.T) (http.Handler, *models.Identity) {
	t.Helper()
	var seen models.Identity
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFrom(r.Context()); ok {
			seen = id
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestIdentityReadsHeaders(t *testing.T) {
	h, seen := identityEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "seller")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, models.RoleSeller, seen.Role)
}

func TestIdentityDefaultsUnknownRoleToCustomer(t *testing.T) {
	h, seen := identityEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "superuser")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, models.RoleCustomer, seen.Role)
}

func TestIdentityAbsentWithoutUserHeader(t *testing.T) {
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := IdentityFrom(r.Context())
		assert.False(t, ok)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRequireUser(t *testing.T) {
	h := Identity(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	h := Identity(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		role string
		want int
	}{
		{"customer", http.StatusForbidden},
		{"seller", http.StatusForbidden},
		{"admin", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", "u1")
		req.Header.Set("X-User-Role", tt.role)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, tt.want, rec.Code, "role %s", tt.role)
	}
}
