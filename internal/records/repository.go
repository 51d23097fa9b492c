package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ChaliniM/Healthcare/pkg/database"
	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/monitoring"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Repository implements the RecordsRepository interface over the embedded
// SQLite store. Every mutation commits immediately.
type Repository struct {
	db      *database.DB
	logger  *logger.Logger
	metrics *monitoring.MetricsCollector
}

// NewRepository creates a new records repository
func NewRepository(db *database.DB, log *logger.Logger, metrics *monitoring.MetricsCollector) interfaces.RecordsRepository {
	return &Repository{
		db:      db,
		logger:  log,
		metrics: metrics,
	}
}

func (r *Repository) observe(queryType string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordDBQuery(queryType, time.Since(start))
	}
}

// CreatePatient inserts a new patient. The name is required; every other
// field may be absent and is stored as NULL.
func (r *Repository) CreatePatient(ctx context.Context, p *types.Patient) (int64, error) {
	defer r.observe("create_patient", time.Now())

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "patient name is required")
	}

	query := `INSERT INTO patients (name, age, gender, phone, email, notes) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Notes)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create patient")
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get patient id: %w", err)
	}

	r.logger.WithField("patient_id", id).Info("Created patient")
	return id, nil
}

// GetPatientByID retrieves a patient by ID
func (r *Repository) GetPatientByID(ctx context.Context, id int64) (*types.Patient, error) {
	defer r.observe("get_patient", time.Now())

	query := `SELECT id, name, age, gender, phone, email, notes FROM patients WHERE id = ?`

	p := &types.Patient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.Notes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("patient not found: %d", id))
		}
		r.logger.WithError(err).WithField("patient_id", id).Error("Failed to get patient")
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return p, nil
}

// ListPatients retrieves patients ordered by descending id. A non-empty
// query filters by case-insensitive substring match on name, phone or email.
func (r *Repository) ListPatients(ctx context.Context, search string) ([]*types.Patient, error) {
	defer r.observe("list_patients", time.Now())

	query := `SELECT id, name, age, gender, phone, email, notes FROM patients ORDER BY id DESC`
	args := []interface{}{}

	search = strings.TrimSpace(search)
	if search != "" {
		// SQLite LIKE is case-insensitive for ASCII.
		query = `SELECT id, name, age, gender, phone, email, notes FROM patients
			WHERE name LIKE ? OR phone LIKE ? OR email LIKE ? ORDER BY id DESC`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list patients")
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []*types.Patient
	for rows.Next() {
		p := &types.Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, nil
}

// UpdatePatient updates an existing patient
func (r *Repository) UpdatePatient(ctx context.Context, id int64, p *types.Patient) error {
	defer r.observe("update_patient", time.Now())

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "patient name is required")
	}

	query := `UPDATE patients SET name = ?, age = ?, gender = ?, phone = ?, email = ?, notes = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Notes, id)
	if err != nil {
		r.logger.WithError(err).WithField("patient_id", id).Error("Failed to update patient")
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("patient not found: %d", id))
	}

	r.logger.WithField("patient_id", id).Info("Updated patient")
	return nil
}

// DeletePatient deletes a patient. Deleting an unknown id is not an error,
// and dependent appointments and alerts are left behind on purpose: list
// queries joined to patients exclude them.
func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	defer r.observe("delete_patient", time.Now())

	if _, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id); err != nil {
		r.logger.WithError(err).WithField("patient_id", id).Error("Failed to delete patient")
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	r.logger.WithField("patient_id", id).Info("Deleted patient")
	return nil
}

// CreateAppointment inserts a new appointment. The patient id and datetime
// are required; the datetime must use the fixed "YYYY-MM-DD HH:MM" layout so
// that string ordering stays chronological.
func (r *Repository) CreateAppointment(ctx context.Context, a *types.Appointment) (int64, error) {
	defer r.observe("create_appointment", time.Now())

	a.DateTime = strings.TrimSpace(a.DateTime)
	if a.PatientID <= 0 {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "appointment patient id is required")
	}
	if a.DateTime == "" {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "appointment datetime is required")
	}
	if _, err := time.Parse(types.DateTimeLayout, a.DateTime); err != nil {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput,
			fmt.Sprintf("appointment datetime must use the %q layout", types.DateTimeLayout))
	}

	if a.Status == "" {
		a.Status = string(types.StatusScheduled)
	}

	query := `INSERT INTO appointments (patient_id, datetime, doctor, reason, status) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, a.PatientID, a.DateTime, a.Doctor, a.Reason, a.Status)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create appointment")
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get appointment id: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"appointment_id": id,
		"patient_id":     a.PatientID,
	}).Info("Created appointment")
	return id, nil
}

// GetAppointmentByID retrieves an appointment by ID
func (r *Repository) GetAppointmentByID(ctx context.Context, id int64) (*types.Appointment, error) {
	defer r.observe("get_appointment", time.Now())

	query := `SELECT id, patient_id, datetime, doctor, reason, status FROM appointments WHERE id = ?`

	a := &types.Appointment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PatientID, &a.DateTime, &a.Doctor, &a.Reason, &a.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("appointment not found: %d", id))
		}
		r.logger.WithError(err).WithField("appointment_id", id).Error("Failed to get appointment")
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return a, nil
}

// ListAppointments retrieves all appointments joined to their patient,
// newest first. Appointments whose patient was deleted drop out via the
// inner join.
func (r *Repository) ListAppointments(ctx context.Context) ([]*types.Appointment, error) {
	defer r.observe("list_appointments", time.Now())

	query := `
		SELECT a.id, a.patient_id, a.datetime, a.doctor, a.reason, a.status, p.name
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		ORDER BY a.datetime DESC`

	return r.scanAppointmentRows(ctx, query)
}

// ListPatientAppointments retrieves one patient's appointments, newest first
func (r *Repository) ListPatientAppointments(ctx context.Context, patientID int64) ([]*types.Appointment, error) {
	defer r.observe("list_patient_appointments", time.Now())

	query := `SELECT id, patient_id, datetime, doctor, reason, status FROM appointments
		WHERE patient_id = ? ORDER BY datetime DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		r.logger.WithError(err).WithField("patient_id", patientID).Error("Failed to list patient appointments")
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*types.Appointment
	for rows.Next() {
		a := &types.Appointment{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DateTime, &a.Doctor, &a.Reason, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appointments, nil
}

func (r *Repository) scanAppointmentRows(ctx context.Context, query string, args ...interface{}) ([]*types.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list appointments")
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*types.Appointment
	for rows.Next() {
		a := &types.Appointment{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DateTime, &a.Doctor, &a.Reason, &a.Status, &a.PatientName); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appointments, nil
}

// UpdateAppointmentStatus sets a new status for an appointment. Status
// values are a convention, not a constraint.
func (r *Repository) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	defer r.observe("update_appointment_status", time.Now())

	status = strings.TrimSpace(status)
	if status == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "appointment status is required")
	}

	result, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		r.logger.WithError(err).WithField("appointment_id", id).Error("Failed to update appointment status")
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("appointment not found: %d", id))
	}

	r.logger.WithFields(map[string]interface{}{
		"appointment_id": id,
		"status":         status,
	}).Info("Updated appointment status")
	return nil
}

// DeleteAppointment deletes an appointment. Deleting an unknown id is not
// an error.
func (r *Repository) DeleteAppointment(ctx context.Context, id int64) error {
	defer r.observe("delete_appointment", time.Now())

	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id); err != nil {
		r.logger.WithError(err).WithField("appointment_id", id).Error("Failed to delete appointment")
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	r.logger.WithField("appointment_id", id).Info("Deleted appointment")
	return nil
}

// CreateAlert inserts a new alert. The message is required; severity falls
// back to "info" and sent always starts false.
func (r *Repository) CreateAlert(ctx context.Context, a *types.Alert) (int64, error) {
	defer r.observe("create_alert", time.Now())

	a.Message = strings.TrimSpace(a.Message)
	if a.Message == "" {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "alert message is required")
	}

	if a.Severity == "" {
		a.Severity = string(types.SeverityInfo)
	}
	a.Sent = false
	a.CreatedAt = time.Now().Format("2006-01-02 15:04:05")

	query := `INSERT INTO alerts (patient_id, message, severity, created_at, sent) VALUES (?, ?, ?, ?, 0)`

	result, err := r.db.ExecContext(ctx, query, a.PatientID, a.Message, a.Severity, a.CreatedAt)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create alert")
		return 0, fmt.Errorf("failed to create alert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get alert id: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"severity": a.Severity,
	}).Info("Created alert")
	return id, nil
}

// GetAlertByID retrieves an alert by ID
func (r *Repository) GetAlertByID(ctx context.Context, id int64) (*types.Alert, error) {
	defer r.observe("get_alert", time.Now())

	query := `SELECT id, patient_id, message, severity, created_at, sent FROM alerts WHERE id = ?`

	a := &types.Alert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PatientID, &a.Message, &a.Severity, &a.CreatedAt, &a.Sent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("alert not found: %d", id))
		}
		r.logger.WithError(err).WithField("alert_id", id).Error("Failed to get alert")
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return a, nil
}

// ListAlerts retrieves all alerts, newest first. The patient join is a left
// join: alerts may not reference any patient.
func (r *Repository) ListAlerts(ctx context.Context) ([]*types.Alert, error) {
	defer r.observe("list_alerts", time.Now())

	query := `
		SELECT a.id, a.patient_id, a.message, a.severity, a.created_at, a.sent, p.name
		FROM alerts a
		LEFT JOIN patients p ON a.patient_id = p.id
		ORDER BY a.created_at DESC, a.id DESC`

	return r.scanAlertRows(ctx, query)
}

func (r *Repository) scanAlertRows(ctx context.Context, query string, args ...interface{}) ([]*types.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list alerts")
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*types.Alert
	for rows.Next() {
		a := &types.Alert{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Message, &a.Severity, &a.CreatedAt, &a.Sent, &a.PatientName); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}

// MarkAlertSent flags an alert as sent. The transition is one-way and
// idempotent: re-marking a sent alert succeeds.
func (r *Repository) MarkAlertSent(ctx context.Context, id int64) error {
	defer r.observe("mark_alert_sent", time.Now())

	result, err := r.db.ExecContext(ctx, `UPDATE alerts SET sent = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.WithError(err).WithField("alert_id", id).Error("Failed to mark alert sent")
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("alert not found: %d", id))
	}

	r.logger.WithField("alert_id", id).Info("Marked alert sent")
	return nil
}

// DeleteAlert deletes an alert. Deleting an unknown id is not an error.
func (r *Repository) DeleteAlert(ctx context.Context, id int64) error {
	defer r.observe("delete_alert", time.Now())

	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id); err != nil {
		r.logger.WithError(err).WithField("alert_id", id).Error("Failed to delete alert")
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	r.logger.WithField("alert_id", id).Info("Deleted alert")
	return nil
}

// GetDashboardStats aggregates the dashboard counters and the five most
// recent alerts
func (r *Repository) GetDashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	defer r.observe("dashboard_stats", time.Now())

	stats := &types.DashboardStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM patients`, &stats.TotalPatients},
		{`SELECT COUNT(*) FROM appointments WHERE status = 'scheduled'`, &stats.UpcomingAppointments},
		{`SELECT COUNT(*) FROM alerts WHERE sent = 0`, &stats.OpenAlerts},
	}

	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			r.logger.WithError(err).Error("Failed to get dashboard stats")
			return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
		}
	}

	recent, err := r.scanAlertRows(ctx, `
		SELECT a.id, a.patient_id, a.message, a.severity, a.created_at, a.sent, p.name
		FROM alerts a
		LEFT JOIN patients p ON a.patient_id = p.id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	stats.RecentAlerts = recent

	return stats, nil
}
