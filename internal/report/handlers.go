package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Handlers exposes report downloads over HTTP
type Handlers struct {
	generator *Generator
	logger    *logger.Logger
}

// NewHandlers creates the report HTTP handlers
func NewHandlers(generator *Generator, log *logger.Logger) *Handlers {
	return &Handlers{
		generator: generator,
		logger:    log,
	}
}

// Register configures the report routes on the given router
func (h *Handlers) Register(api *mux.Router) {
	api.HandleFunc("/patients/{id}/report", h.downloadReportHandler).Methods("GET")
}

func (h *Handlers) downloadReportHandler(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid patient id: "+raw))
		return
	}

	pdfBytes, err := h.generator.PatientReport(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", h.generator.Filename(id)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.WithError(err).Error("Failed to write PDF response")
	}
}

// writeErrorResponse maps generator errors onto HTTP statuses
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
		}
	}

	if statusCode >= 500 {
		h.logger.WithError(err).Error("Report request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}
