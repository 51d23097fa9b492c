package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

func setupTestReportRouter(t *testing.T) (*mux.Router, interfaces.RecordsRepository) {
	t.Helper()

	g, repo := setupTestGenerator(t)
	handlers := NewHandlers(g, logger.New("error"))

	router := mux.NewRouter()
	handlers.Register(router)
	return router, repo
}

func TestDownloadReportHandler(t *testing.T) {
	router, repo := setupTestReportRouter(t)

	_, err := repo.CreatePatient(context.Background(), &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/patients/1/report", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "patient_1_report.pdf")
	assert.NotEmpty(t, rr.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-", rr.Body.String()[:5])
}

func TestDownloadReportHandler_UnknownPatient(t *testing.T) {
	router, _ := setupTestReportRouter(t)

	req := httptest.NewRequest("GET", "/patients/999/report", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownloadReportHandler_InvalidID(t *testing.T) {
	router, _ := setupTestReportRouter(t)

	req := httptest.NewRequest("GET", "/patients/abc/report", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
