package interfaces

import "context"

// ReportGenerator renders per-patient PDF reports. It only reads from
// storage, never mutates.
type ReportGenerator interface {
	PatientReport(ctx context.Context, patientID int64) ([]byte, error)
	Filename(patientID int64) string
}
