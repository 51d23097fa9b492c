package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaliniM/Healthcare/internal/records"
	"github.com/ChaliniM/Healthcare/pkg/database"
	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

func setupTestGenerator(t *testing.T) (*Generator, interfaces.RecordsRepository) {
	t.Helper()

	log := logger.New("error")

	db, err := database.NewMemoryConnection(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreateSchema(context.Background()))

	repo := records.NewRepository(db, log, nil)
	return NewGenerator(repo, log, nil, ""), repo
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestGenerator_Filename(t *testing.T) {
	g, _ := setupTestGenerator(t)

	assert.Equal(t, "patient_7_report.pdf", g.Filename(7))
}

func TestGenerator_BuildDocumentInfoRows(t *testing.T) {
	g, _ := setupTestGenerator(t)

	patient := &types.Patient{
		ID:    3,
		Name:  "Jane Doe",
		Age:   intPtr(42),
		Phone: strPtr("555-0100"),
	}

	doc := g.buildDocument(patient, nil)

	assert.Equal(t, "Patient Report - Jane Doe", doc.Title)
	assert.NotEmpty(t, doc.GeneratedAt)
	assert.Empty(t, doc.LogoPath, "no logo configured")

	expected := [][2]string{
		{"ID", "3"},
		{"Name", "Jane Doe"},
		{"Age", "42"},
		{"Gender", "N/A"},
		{"Phone", "555-0100"},
		{"Email", "N/A"},
		{"Notes", ""},
	}
	assert.Equal(t, expected, doc.InfoRows)

	// No appointments: the table is replaced by the empty-history message,
	// so the document carries no rows at all
	assert.Empty(t, doc.HistoryRows)
}

func TestGenerator_BuildDocumentHistoryOrder(t *testing.T) {
	g, repo := setupTestGenerator(t)
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	for _, dt := range []string{"2024-01-01 09:00", "2024-03-05 10:00", "2023-12-31 23:59"} {
		_, err := repo.CreateAppointment(ctx, &types.Appointment{
			PatientID: pid,
			DateTime:  dt,
			Doctor:    strPtr("Dr. House"),
		})
		require.NoError(t, err)
	}

	patient, err := repo.GetPatientByID(ctx, pid)
	require.NoError(t, err)
	appointments, err := repo.ListPatientAppointments(ctx, pid)
	require.NoError(t, err)

	doc := g.buildDocument(patient, appointments)

	require.Len(t, doc.HistoryRows, 3)
	assert.Equal(t, [4]string{"2024-03-05 10:00", "Dr. House", "N/A", "scheduled"}, doc.HistoryRows[0])
	assert.Equal(t, "2024-01-01 09:00", doc.HistoryRows[1][0])
	assert.Equal(t, "2023-12-31 23:59", doc.HistoryRows[2][0])
}

func TestGenerator_PatientReportProducesPDF(t *testing.T) {
	g, repo := setupTestGenerator(t)
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)
	_, err = repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: "2024-01-01 09:00"})
	require.NoError(t, err)

	out, err := g.PatientReport(ctx, pid)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF-", string(out[:5]))
}

func TestGenerator_PatientReportWithoutAppointments(t *testing.T) {
	g, repo := setupTestGenerator(t)
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	out, err := g.PatientReport(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(out[:5]))
}

func TestGenerator_PatientReportUnknownPatient(t *testing.T) {
	g, _ := setupTestGenerator(t)

	_, err := g.PatientReport(context.Background(), 999)
	assert.True(t, types.IsNotFound(err))
}
