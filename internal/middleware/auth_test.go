package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earnstack/backend/internal/models"
)

type stubValidator struct {
	email string
	role  string
	err   error
}

func (s stubValidator) ValidateToken(_ context.Context, _ string) (string, string, error) {
	return s.email, s.role, s.err
}

func TestAuthenticate(t *testing.T) {
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(stubValidator{email: "w@x.com", role: models.RoleWorker})(next)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "w@x.com", seen.Email)
	assert.Equal(t, models.RoleWorker, seen.Role)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	handler := Authenticate(stubValidator{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized access"}`, rec.Body.String())
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	handler := Authenticate(stubValidator{err: errors.New("expired")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer expiredtoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name     string
		identity *Identity
		allowed  []string
		want     int
	}{
		{"matching role", &Identity{Email: "a@x.com", Role: models.RoleAdmin}, []string{models.RoleAdmin}, http.StatusOK},
		{"one of several", &Identity{Email: "b@x.com", Role: models.RoleBuyer}, []string{models.RoleBuyer, models.RoleAdmin}, http.StatusOK},
		{"wrong role", &Identity{Email: "w@x.com", Role: models.RoleWorker}, []string{models.RoleAdmin}, http.StatusForbidden},
		{"no identity", nil, []string{models.RoleAdmin}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.allowed...)(next)
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tc.identity))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				assert.JSONEq(t, `{"message":"Forbidden access"}`, rec.Body.String())
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, extractBearer(req), "header %q", tc.header)
	}
}
