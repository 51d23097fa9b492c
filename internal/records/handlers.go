package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Handlers exposes the records service over HTTP. The handlers are thin:
// they parse input, call the service and translate errors to statuses.
type Handlers struct {
	service interfaces.RecordsService
	logger  *logger.Logger
}

// NewHandlers creates the records HTTP handlers
func NewHandlers(service interfaces.RecordsService, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  log,
	}
}

// Register configures the records routes on the given router
func (h *Handlers) Register(api *mux.Router) {
	api.HandleFunc("/dashboard", h.dashboardHandler).Methods("GET")

	api.HandleFunc("/patients", h.listPatientsHandler).Methods("GET")
	api.HandleFunc("/patients", h.createPatientHandler).Methods("POST")
	api.HandleFunc("/patients/{id}", h.getPatientHandler).Methods("GET")
	api.HandleFunc("/patients/{id}", h.updatePatientHandler).Methods("PUT")

	api.HandleFunc("/appointments", h.listAppointmentsHandler).Methods("GET")
	api.HandleFunc("/appointments", h.createAppointmentHandler).Methods("POST")
	api.HandleFunc("/appointments/{id}/status", h.updateAppointmentStatusHandler).Methods("PUT")
	api.HandleFunc("/appointments/{id}", h.deleteAppointmentHandler).Methods("DELETE")

	api.HandleFunc("/alerts", h.listAlertsHandler).Methods("GET")
	api.HandleFunc("/alerts", h.createAlertHandler).Methods("POST")
	api.HandleFunc("/alerts/{id}/sent", h.markAlertSentHandler).Methods("POST")
	api.HandleFunc("/alerts/{id}", h.deleteAlertHandler).Methods("DELETE")
}

// RegisterAdmin configures the admin-only records routes. Deleting a
// patient is destructive and intentionally leaves orphaned rows behind, so
// it stays behind the admin role gate.
func (h *Handlers) RegisterAdmin(api *mux.Router) {
	api.HandleFunc("/patients/{id}", h.deletePatientHandler).Methods("DELETE")
}

func (h *Handlers) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, stats)
}

func (h *Handlers) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, patients)
}

func (h *Handlers) createPatientHandler(w http.ResponseWriter, r *http.Request) {
	var p types.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	created, err := h.service.CreatePatient(r.Context(), &p)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, created)
}

func (h *Handlers) getPatientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	patient, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, patient)
}

func (h *Handlers) updatePatientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	var p types.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.service.UpdatePatient(r.Context(), id, &p); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Patient updated"})
}

func (h *Handlers) deletePatientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	if err := h.service.DeletePatient(r.Context(), id); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Patient deleted"})
}

func (h *Handlers) listAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.service.ListAppointments(r.Context())
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, appointments)
}

func (h *Handlers) createAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var a types.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	created, err := h.service.ScheduleAppointment(r.Context(), &a)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, created)
}

func (h *Handlers) updateAppointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.service.UpdateAppointmentStatus(r.Context(), id, body.Status); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Appointment status updated"})
}

func (h *Handlers) deleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	if err := h.service.DeleteAppointment(r.Context(), id); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Appointment deleted"})
}

func (h *Handlers) listAlertsHandler(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ListAlerts(r.Context())
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, alerts)
}

func (h *Handlers) createAlertHandler(w http.ResponseWriter, r *http.Request) {
	var a types.Alert
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	created, err := h.service.CreateAlert(r.Context(), &a)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, created)
}

func (h *Handlers) markAlertSentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	if err := h.service.MarkAlertSent(r.Context(), id); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Alert marked sent"})
}

func (h *Handlers) deleteAlertHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	if err := h.service.DeleteAlert(r.Context(), id); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Alert deleted"})
}

// pathID parses the {id} path variable
func (h *Handlers) pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "invalid id: "+raw)
	}
	return id, nil
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
		default:
			statusCode = http.StatusInternalServerError
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
