package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaliniM/Healthcare/pkg/database"
	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

func setupTestRepository(t *testing.T) (interfaces.RecordsRepository, *database.DB, func()) {
	t.Helper()

	log := logger.New("error")

	db, err := database.NewMemoryConnection(log)
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(context.Background()))

	repo := NewRepository(db, log, nil)

	cleanup := func() {
		db.Close()
	}

	return repo, db, cleanup
}

func countRows(t *testing.T, db *database.DB, table string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestRepository_CreatePatientRoundtrip(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.CreatePatient(ctx, &types.Patient{
		Name:  "Jane Doe",
		Age:   intPtr(42),
		Phone: strPtr("555-0100"),
	})
	require.NoError(t, err)

	stored, err := repo.GetPatientByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", stored.Name)
	require.NotNil(t, stored.Age)
	assert.Equal(t, int64(42), *stored.Age)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "555-0100", *stored.Phone)

	// Optional fields left out are stored as NULL
	assert.Nil(t, stored.Gender)
	assert.Nil(t, stored.Email)
	assert.Nil(t, stored.Notes)
}

func TestRepository_CreatePatientRequiresName(t *testing.T) {
	repo, db, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := repo.CreatePatient(ctx, &types.Patient{Name: name})
		assert.True(t, types.IsValidation(err), "name %q should be rejected", name)
	}

	// No partial writes
	assert.Equal(t, int64(0), countRows(t, db, "patients"))
}

func TestRepository_ListPatientsFilterAndOrder(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	first, err := repo.CreatePatient(ctx, &types.Patient{Name: "Alice Smith", Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	second, err := repo.CreatePatient(ctx, &types.Patient{Name: "Bob Jones", Phone: strPtr("555-0101")})
	require.NoError(t, err)

	all, err := repo.ListPatients(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].ID, "newest patient comes first")
	assert.Equal(t, first, all[1].ID)

	// Case-insensitive substring match on name
	matched, err := repo.ListPatients(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Alice Smith", matched[0].Name)

	// Match on phone
	matched, err = repo.ListPatients(ctx, "555-0101")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Bob Jones", matched[0].Name)

	// No match
	matched, err = repo.ListPatients(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestRepository_UpdatePatient(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	err = repo.UpdatePatient(ctx, id, &types.Patient{Name: "Jane Roe", Notes: strPtr("allergy: penicillin")})
	require.NoError(t, err)

	stored, err := repo.GetPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", stored.Name)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "allergy: penicillin", *stored.Notes)

	// Empty name is rejected
	err = repo.UpdatePatient(ctx, id, &types.Patient{Name: "  "})
	assert.True(t, types.IsValidation(err))

	// Unknown id is not found
	err = repo.UpdatePatient(ctx, 9999, &types.Patient{Name: "Ghost"})
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_DeletePatientIsIdempotent(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	require.NoError(t, repo.DeletePatient(ctx, id))
	require.NoError(t, repo.DeletePatient(ctx, id), "deleting an unknown id is not an error")

	_, err = repo.GetPatientByID(ctx, id)
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_CreateAppointmentValidation(t *testing.T) {
	repo, db, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	cases := []struct {
		name string
		apt  types.Appointment
	}{
		{"missing patient", types.Appointment{DateTime: "2024-01-01 09:00"}},
		{"missing datetime", types.Appointment{PatientID: pid}},
		{"malformed datetime", types.Appointment{PatientID: pid, DateTime: "tomorrow at nine"}},
		{"wrong layout", types.Appointment{PatientID: pid, DateTime: "01/02/2024 09:00"}},
	}

	for _, tc := range cases {
		_, err := repo.CreateAppointment(ctx, &tc.apt)
		assert.True(t, types.IsValidation(err), "%s should be rejected", tc.name)
	}

	assert.Equal(t, int64(0), countRows(t, db, "appointments"))
}

func TestRepository_AppointmentDefaultsAndRoundtrip(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	id, err := repo.CreateAppointment(ctx, &types.Appointment{
		PatientID: pid,
		DateTime:  "2024-01-01 09:00",
		Doctor:    strPtr("Dr. House"),
	})
	require.NoError(t, err)

	stored, err := repo.GetAppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, pid, stored.PatientID)
	assert.Equal(t, "2024-01-01 09:00", stored.DateTime)
	assert.Equal(t, string(types.StatusScheduled), stored.Status, "status defaults to scheduled")
	assert.Nil(t, stored.Reason)
}

func TestRepository_ListAppointmentsOrdering(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	for _, dt := range []string{"2024-01-01 09:00", "2024-03-05 10:00", "2023-12-31 23:59"} {
		_, err := repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: dt})
		require.NoError(t, err)
	}

	list, err := repo.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "2024-03-05 10:00", list[0].DateTime)
	assert.Equal(t, "2024-01-01 09:00", list[1].DateTime)
	assert.Equal(t, "2023-12-31 23:59", list[2].DateTime)

	for _, a := range list {
		assert.Equal(t, "Jane Doe", a.PatientName)
	}
}

func TestRepository_OrphanedAppointmentsExcludedFromList(t *testing.T) {
	repo, db, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)
	_, err = repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: "2024-01-01 09:00"})
	require.NoError(t, err)

	require.NoError(t, repo.DeletePatient(ctx, pid))

	// The orphaned row persists in storage...
	assert.Equal(t, int64(1), countRows(t, db, "appointments"))

	// ...but the joined list excludes it
	list, err := repo.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_UpdateAppointmentStatus(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)
	id, err := repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: "2024-01-01 09:00"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAppointmentStatus(ctx, id, "completed"))

	stored, err := repo.GetAppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)

	err = repo.UpdateAppointmentStatus(ctx, id, " ")
	assert.True(t, types.IsValidation(err))

	err = repo.UpdateAppointmentStatus(ctx, 9999, "completed")
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_CreateAlertDefaults(t *testing.T) {
	repo, db, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.CreateAlert(ctx, &types.Alert{Message: "  "})
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, int64(0), countRows(t, db, "alerts"))

	id, err := repo.CreateAlert(ctx, &types.Alert{Message: "check blood pressure"})
	require.NoError(t, err)

	stored, err := repo.GetAlertByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "check blood pressure", stored.Message)
	assert.Equal(t, string(types.SeverityInfo), stored.Severity, "severity defaults to info")
	assert.False(t, stored.Sent)
	assert.NotEmpty(t, stored.CreatedAt)
	assert.Nil(t, stored.PatientID)
}

func TestRepository_MarkAlertSentIsIdempotent(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.CreateAlert(ctx, &types.Alert{Message: "follow up"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkAlertSent(ctx, id))
	require.NoError(t, repo.MarkAlertSent(ctx, id), "re-marking a sent alert succeeds")

	stored, err := repo.GetAlertByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Sent)

	err = repo.MarkAlertSent(ctx, 9999)
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_ListAlertsJoinsPatientName(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	_, err = repo.CreateAlert(ctx, &types.Alert{PatientID: &pid, Message: "lab result ready"})
	require.NoError(t, err)
	_, err = repo.CreateAlert(ctx, &types.Alert{Message: "system maintenance"})
	require.NoError(t, err)

	list, err := repo.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first
	assert.Equal(t, "system maintenance", list[0].Message)
	assert.Nil(t, list[0].PatientName, "alert without a patient has no name")

	require.NotNil(t, list[1].PatientName)
	assert.Equal(t, "Jane Doe", *list[1].PatientName)
}

func TestRepository_DashboardStats(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	pid, err := repo.CreatePatient(ctx, &types.Patient{Name: "Jane Doe"})
	require.NoError(t, err)

	aptID, err := repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: "2024-01-01 09:00"})
	require.NoError(t, err)
	_, err = repo.CreateAppointment(ctx, &types.Appointment{PatientID: pid, DateTime: "2024-02-01 09:00"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateAppointmentStatus(ctx, aptID, "completed"))

	sentID, err := repo.CreateAlert(ctx, &types.Alert{Message: "first"})
	require.NoError(t, err)
	_, err = repo.CreateAlert(ctx, &types.Alert{Message: "second"})
	require.NoError(t, err)
	require.NoError(t, repo.MarkAlertSent(ctx, sentID))

	stats, err := repo.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalPatients)
	assert.Equal(t, int64(1), stats.UpcomingAppointments, "only scheduled appointments count")
	assert.Equal(t, int64(1), stats.OpenAlerts, "only unsent alerts count")
	require.NotEmpty(t, stats.RecentAlerts)
	assert.Equal(t, "second", stats.RecentAlerts[0].Message)
}
