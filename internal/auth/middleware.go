package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

type contextKey string

// principalKey is the context key carrying the request's principal
const principalKey contextKey = "principal"

// DashboardPath is where denied principals are sent instead of a flat 403.
// Sending callers to their own dashboard is a deliberate UX choice carried
// over from the original application.
const DashboardPath = "/api/v1/dashboard"

// Middleware authenticates requests and gates role-restricted routes
type Middleware struct {
	service    interfaces.AuthService
	cookieName string
	logger     *logger.Logger
}

// NewMiddleware creates the auth middleware
func NewMiddleware(service interfaces.AuthService, cookieName string, log *logger.Logger) *Middleware {
	return &Middleware{
		service:    service,
		cookieName: cookieName,
		logger:     log,
	}
}

// RequireAuth validates the session token and stores the principal in the
// request context. The token is read from the session cookie or from a
// Bearer authorization header.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			m.unauthorized(w, "missing session token")
			return
		}

		principal, err := m.service.ValidateToken(token)
		if err != nil {
			m.logger.WithError(err).Warn("Session token validation failed")
			m.unauthorized(w, "invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on a role. A principal holding a different role
// is redirected to its own dashboard rather than rejected outright.
func (m *Middleware) RequireRole(role types.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.unauthorized(w, "missing session token")
				return
			}

			if principal.Role != role {
				m.logger.WithFields(map[string]interface{}{
					"username":      principal.Username,
					"role":          principal.Role,
					"required_role": role,
					"path":          r.URL.Path,
				}).Warn("Role denied, redirecting to dashboard")
				http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the authenticated principal stored by
// RequireAuth
func PrincipalFromContext(ctx context.Context) (*types.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*types.Principal)
	return principal, ok
}

// ContextWithPrincipal returns a context carrying the principal, used by
// handler tests
func ContextWithPrincipal(ctx context.Context, principal *types.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func (m *Middleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":    message,
		"status":   http.StatusUnauthorized,
		"redirect": "/login",
	})
}
