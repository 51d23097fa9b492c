package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Handlers exposes the auth gate over HTTP
type Handlers struct {
	service    interfaces.AuthService
	cookieName string
	logger     *logger.Logger
}

// NewHandlers creates the auth HTTP handlers
func NewHandlers(service interfaces.AuthService, cookieName string, log *logger.Logger) *Handlers {
	return &Handlers{
		service:    service,
		cookieName: cookieName,
		logger:     log,
	}
}

// Register configures the auth routes on the given router
func (h *Handlers) Register(api *mux.Router) {
	api.HandleFunc("/auth/login", h.loginHandler).Methods("POST")
	api.HandleFunc("/auth/logout", h.logoutHandler).Methods("POST")
}

// RegisterDemoRoutes configures the unauthenticated demo provisioning
// endpoint. Only wired when demo routes are enabled in configuration.
func (h *Handlers) RegisterDemoRoutes(router *mux.Router) {
	router.HandleFunc("/demo/users", h.createDemoUserHandler).Methods("POST")
}

func (h *Handlers) loginHandler(w http.ResponseWriter, r *http.Request) {
	var creds types.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	principal, err := h.service.Authenticate(r.Context(), &creds)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	token, err := h.service.IssueToken(principal)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"principal": principal,
	})
}

func (h *Handlers) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// createDemoUserHandler provisions the sample nurse principal
func (h *Handlers) createDemoUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CreateUser(r.Context(), "nurse", "nurse123", types.RoleNurse)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Demo user created",
		"user":    user,
	})
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeErrorResponse maps service errors onto HTTP statuses
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal error"

	var ce *types.ClinicError
	if errors.As(err, &ce) {
		message = ce.Message
		switch ce.Type {
		case types.ErrorTypeValidation:
			statusCode = http.StatusBadRequest
		case types.ErrorTypeNotFound:
			statusCode = http.StatusNotFound
		case types.ErrorTypeAuthentication:
			statusCode = http.StatusUnauthorized
		case types.ErrorTypeAuthorization:
			statusCode = http.StatusForbidden
		}
	}

	if statusCode >= 500 {
		h.logger.WithError(err).Error("Request failed")
	}

	h.writeJSONResponse(w, statusCode, map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}
