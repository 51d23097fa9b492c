package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

const testCookieName = "clinic_session"

func setupTestMiddleware(t *testing.T) (*Middleware, *TokenValidator) {
	t.Helper()

	service, cleanup := setupTestAuthService(t)
	t.Cleanup(cleanup)

	tv := NewTokenValidator("test-secret", time.Hour)
	return NewMiddleware(service, testCookieName, logger.New("error")), tv
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingToken(t *testing.T) {
	m, _ := setupTestMiddleware(t)

	req := httptest.NewRequest("GET", "/patients", nil)
	rr := httptest.NewRecorder()
	m.RequireAuth(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "/login")
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	m, _ := setupTestMiddleware(t)

	req := httptest.NewRequest("GET", "/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "garbage"})
	rr := httptest.NewRecorder()
	m.RequireAuth(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuth_CookieToken(t *testing.T) {
	m, tv := setupTestMiddleware(t)

	token, err := tv.Generate(&types.Principal{UserID: 1, Username: "admin", Role: types.RoleAdmin})
	require.NoError(t, err)

	var seen *types.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token.AccessToken})
	rr := httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.Username)
}

func TestRequireAuth_BearerToken(t *testing.T) {
	m, tv := setupTestMiddleware(t)

	token, err := tv.Generate(&types.Principal{UserID: 2, Username: "doctor", Role: types.RoleDoctor})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rr := httptest.NewRecorder()
	m.RequireAuth(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_RedirectsToDashboard(t *testing.T) {
	m, _ := setupTestMiddleware(t)

	gate := m.RequireRole(types.RoleAdmin)(okHandler())

	req := httptest.NewRequest("DELETE", "/patients/1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(),
		&types.Principal{UserID: 3, Username: "nurse", Role: types.RoleNurse}))
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	// Role mismatches bounce to the caller's dashboard, not a 403
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, DashboardPath, rr.Header().Get("Location"))
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	m, _ := setupTestMiddleware(t)

	gate := m.RequireRole(types.RoleAdmin)(okHandler())

	req := httptest.NewRequest("DELETE", "/patients/1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(),
		&types.Principal{UserID: 1, Username: "admin", Role: types.RoleAdmin}))
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_MissingPrincipal(t *testing.T) {
	m, _ := setupTestMiddleware(t)

	gate := m.RequireRole(types.RoleAdmin)(okHandler())

	req := httptest.NewRequest("DELETE", "/patients/1", nil)
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
