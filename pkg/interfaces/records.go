package interfaces

import (
	"context"

	"github.com/ChaliniM/Healthcare/pkg/types"
)

// RecordsRepository defines the interface for clinic record persistence.
// Every mutation commits immediately; there are no transactions spanning
// more than one statement.
type RecordsRepository interface {
	// Patients
	CreatePatient(ctx context.Context, p *types.Patient) (int64, error)
	GetPatientByID(ctx context.Context, id int64) (*types.Patient, error)
	ListPatients(ctx context.Context, query string) ([]*types.Patient, error)
	UpdatePatient(ctx context.Context, id int64, p *types.Patient) error
	DeletePatient(ctx context.Context, id int64) error

	// Appointments
	CreateAppointment(ctx context.Context, a *types.Appointment) (int64, error)
	GetAppointmentByID(ctx context.Context, id int64) (*types.Appointment, error)
	ListAppointments(ctx context.Context) ([]*types.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID int64) ([]*types.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status string) error
	DeleteAppointment(ctx context.Context, id int64) error

	// Alerts
	CreateAlert(ctx context.Context, a *types.Alert) (int64, error)
	GetAlertByID(ctx context.Context, id int64) (*types.Alert, error)
	ListAlerts(ctx context.Context) ([]*types.Alert, error)
	MarkAlertSent(ctx context.Context, id int64) error
	DeleteAlert(ctx context.Context, id int64) error

	// Dashboard
	GetDashboardStats(ctx context.Context) (*types.DashboardStats, error)
}

// RecordsService defines the business operations over clinic records
type RecordsService interface {
	CreatePatient(ctx context.Context, p *types.Patient) (*types.Patient, error)
	GetPatient(ctx context.Context, id int64) (*types.Patient, error)
	ListPatients(ctx context.Context, query string) ([]*types.Patient, error)
	UpdatePatient(ctx context.Context, id int64, p *types.Patient) error
	DeletePatient(ctx context.Context, id int64) error

	ScheduleAppointment(ctx context.Context, a *types.Appointment) (*types.Appointment, error)
	ListAppointments(ctx context.Context) ([]*types.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status string) error
	DeleteAppointment(ctx context.Context, id int64) error

	CreateAlert(ctx context.Context, a *types.Alert) (*types.Alert, error)
	ListAlerts(ctx context.Context) ([]*types.Alert, error)
	MarkAlertSent(ctx context.Context, id int64) error
	DeleteAlert(ctx context.Context, id int64) error

	GetDashboardStats(ctx context.Context) (*types.DashboardStats, error)
}
