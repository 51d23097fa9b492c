package types

// DateTimeLayout is the storage format for appointment datetimes. The format
// is fixed-width and zero-padded, so string ordering matches chronological
// ordering.
const DateTimeLayout = "2006-01-02 15:04"

// Patient represents a registered patient
type Patient struct {
	ID     int64   `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	Age    *int64  `json:"age,omitempty" db:"age"`
	Gender *string `json:"gender,omitempty" db:"gender"`
	Phone  *string `json:"phone,omitempty" db:"phone"`
	Email  *string `json:"email,omitempty" db:"email"`
	Notes  *string `json:"notes,omitempty" db:"notes"`
}

// Appointment represents a scheduled appointment for a patient
type Appointment struct {
	ID        int64   `json:"id" db:"id"`
	PatientID int64   `json:"patient_id" db:"patient_id"`
	DateTime  string  `json:"datetime" db:"datetime"`
	Doctor    *string `json:"doctor,omitempty" db:"doctor"`
	Reason    *string `json:"reason,omitempty" db:"reason"`
	Status    string  `json:"status" db:"status"`

	// PatientName is populated by list queries joined to the patients table.
	PatientName string `json:"patient_name,omitempty" db:"patient_name"`
}

// AppointmentStatus represents appointment status values. These are a
// convention, not a constraint: the column stores whatever the caller sets.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Alert represents a recorded notification. Alerts are stored but never
// actually delivered anywhere.
type Alert struct {
	ID        int64  `json:"id" db:"id"`
	PatientID *int64 `json:"patient_id,omitempty" db:"patient_id"`
	Message   string `json:"message" db:"message"`
	Severity  string `json:"severity" db:"severity"`
	CreatedAt string `json:"created_at" db:"created_at"`
	Sent      bool   `json:"sent" db:"sent"`

	// PatientName is populated by list queries joined to the patients table.
	PatientName *string `json:"patient_name,omitempty" db:"patient_name"`
}

// AlertSeverity represents alert severity values, by convention only
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// DashboardStats is the summary shown on the role dashboards
type DashboardStats struct {
	TotalPatients        int64    `json:"total_patients"`
	UpcomingAppointments int64    `json:"upcoming_appointments"`
	OpenAlerts           int64    `json:"open_alerts"`
	RecentAlerts         []*Alert `json:"recent_alerts"`
}
