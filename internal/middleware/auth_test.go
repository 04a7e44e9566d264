package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"diagnoease-backend/internal/auth"
)

type stubRoles struct {
	roles map[string]string
	err   error
}

func (s *stubRoles) RoleByEmail(ctx context.Context, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.roles[email], nil
}

func testManager() *auth.Manager {
	return &auth.Manager{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
		Issuer:   "diagnoease-backend",
	}
}

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	handler := Authenticate(testManager())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/tests", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	handler := Authenticate(testManager())(okHandler())
	for _, header := range []string{"Bearer", "Token abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/tests", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	handler := Authenticate(testManager())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/tests", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateAttachesClaims(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("patient@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	var gotEmail string
	handler := Authenticate(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			gotEmail = claims.Email
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotEmail != "patient@example.com" {
		t.Fatalf("expected claims in context, got %q", gotEmail)
	}
}

func TestRequireAdminForbidden(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{"patient@example.com": "user"}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireAdmin(roles)).Get("/users", okHandler())

	token, err := m.NewToken("patient@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminUnknownUser(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireAdmin(roles)).Get("/users", okHandler())

	token, err := m.NewToken("ghost@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAllowed(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{"admin@example.com": "admin"}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireAdmin(roles)).Get("/users", okHandler())

	token, err := m.NewToken("admin@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdminLookupError(t *testing.T) {
	m := testManager()
	roles := &stubRoles{err: errors.New("boom")}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireAdmin(roles)).Get("/users", okHandler())

	token, err := m.NewToken("admin@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequireSelfOrAdminSelf(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireSelfOrAdmin("email", roles)).Get("/test-results/{email}", okHandler())

	token, err := m.NewToken("patient@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/test-results/patient@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for self access, got %d", rec.Code)
	}
}

func TestRequireSelfOrAdminOtherUser(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{"patient@example.com": "user"}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireSelfOrAdmin("email", roles)).Get("/test-results/{email}", okHandler())

	token, err := m.NewToken("patient@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/test-results/other@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-account access, got %d", rec.Code)
	}
}

func TestRequireSelfOrAdminAdminOverride(t *testing.T) {
	m := testManager()
	roles := &stubRoles{roles: map[string]string{"admin@example.com": "admin"}}

	r := chi.NewRouter()
	r.With(Authenticate(m), RequireSelfOrAdmin("email", roles)).Get("/test-results/{email}", okHandler())

	token, err := m.NewToken("admin@example.com")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/test-results/patient@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin override, got %d", rec.Code)
	}
}
