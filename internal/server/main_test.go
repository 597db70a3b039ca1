package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobboard/internal/bootstrap"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

// useMiniredis points the shared cache client at an in-process redis for
// the duration of the test.
func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := cache.GetClient()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(prev) })
	return mr
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Env:         "test",
		JWTSecret:   testSecret,
		JWTTTLHours: 1,
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",
		MaxUploadMB: 1,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func registerApplicant(t *testing.T, s *Server, email string) (string, uint) {
	t.Helper()
	resp, body := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Applicant " + email,
		"email":    email,
		"password": "secret123",
		"phone":    "+1 555 0100",
		"role":     "applicant",
		"skills":   "go, sql",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["token"].(string), userID(body)
}

func registerProvider(t *testing.T, s *Server, email string) (string, uint) {
	t.Helper()
	resp, body := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":        "Provider " + email,
		"email":       email,
		"password":    "secret123",
		"phone":       "+1 555 0101",
		"role":        "provider",
		"companyName": "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["token"].(string), userID(body)
}

func adminToken(t *testing.T, s *Server, email string) string {
	t.Helper()
	_, err := bootstrap.EnsureAdmin(t.Context(), s.db, bootstrap.AdminAccount{Email: email, Password: "secret123"})
	require.NoError(t, err)
	resp, body := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body["token"].(string)
}

func userID(body map[string]any) uint {
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(float64)
	return uint(id)
}

func jobPayload() map[string]any {
	return map[string]any{
		"jobTitle":    "Backend Engineer",
		"description": "Build APIs",
		"location":    "Remote",
		"jobType":     "Full-time",
		"skills":      []string{"go"},
	}
}
