package records

import (
	"context"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Service implements the RecordsService interface. It owns no state beyond
// its collaborators; all persisted state lives in the repository.
type Service struct {
	repository interfaces.RecordsRepository
	logger     *logger.Logger
}

// NewService creates a new records service
func NewService(repository interfaces.RecordsRepository, log *logger.Logger) interfaces.RecordsService {
	return &Service{
		repository: repository,
		logger:     log,
	}
}

// CreatePatient registers a new patient and returns the stored record
func (s *Service) CreatePatient(ctx context.Context, p *types.Patient) (*types.Patient, error) {
	id, err := s.repository.CreatePatient(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.repository.GetPatientByID(ctx, id)
}

// GetPatient retrieves a patient by id
func (s *Service) GetPatient(ctx context.Context, id int64) (*types.Patient, error) {
	return s.repository.GetPatientByID(ctx, id)
}

// ListPatients lists patients, optionally filtered by a substring match on
// name, phone or email
func (s *Service) ListPatients(ctx context.Context, query string) ([]*types.Patient, error) {
	return s.repository.ListPatients(ctx, query)
}

// UpdatePatient replaces a patient's editable fields
func (s *Service) UpdatePatient(ctx context.Context, id int64, p *types.Patient) error {
	return s.repository.UpdatePatient(ctx, id, p)
}

// DeletePatient removes a patient record
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.repository.DeletePatient(ctx, id)
}

// ScheduleAppointment books a new appointment and returns the stored record
func (s *Service) ScheduleAppointment(ctx context.Context, a *types.Appointment) (*types.Appointment, error) {
	id, err := s.repository.CreateAppointment(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.repository.GetAppointmentByID(ctx, id)
}

// ListAppointments lists all appointments joined to their patient
func (s *Service) ListAppointments(ctx context.Context) ([]*types.Appointment, error) {
	return s.repository.ListAppointments(ctx)
}

// UpdateAppointmentStatus sets a new appointment status
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	return s.repository.UpdateAppointmentStatus(ctx, id, status)
}

// DeleteAppointment removes an appointment
func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.repository.DeleteAppointment(ctx, id)
}

// CreateAlert records a new alert. Alerts are recorded only; nothing is
// actually delivered.
func (s *Service) CreateAlert(ctx context.Context, a *types.Alert) (*types.Alert, error) {
	id, err := s.repository.CreateAlert(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.repository.GetAlertByID(ctx, id)
}

// ListAlerts lists all alerts joined to their patient where one is set
func (s *Service) ListAlerts(ctx context.Context) ([]*types.Alert, error) {
	return s.repository.ListAlerts(ctx)
}

// MarkAlertSent flags an alert as sent
func (s *Service) MarkAlertSent(ctx context.Context, id int64) error {
	return s.repository.MarkAlertSent(ctx, id)
}

// DeleteAlert removes an alert
func (s *Service) DeleteAlert(ctx context.Context, id int64) error {
	return s.repository.DeleteAlert(ctx, id)
}

// GetDashboardStats returns the dashboard summary
func (s *Service) GetDashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	return s.repository.GetDashboardStats(ctx)
}
