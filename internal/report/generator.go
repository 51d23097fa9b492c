package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/monitoring"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// emptyHistoryMessage is printed instead of the appointment table when the
// patient has no appointments
const emptyHistoryMessage = "No appointment history found."

// historyHeader is the appointment table header, in column order
var historyHeader = [4]string{"Date & Time", "Doctor", "Reason", "Status"}

// Generator renders per-patient PDF reports. It reads from the records
// repository and never mutates anything.
type Generator struct {
	repository interfaces.RecordsRepository
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
	logoPath   string
}

// NewGenerator creates a new report generator
func NewGenerator(repository interfaces.RecordsRepository, log *logger.Logger, metrics *monitoring.MetricsCollector, logoPath string) *Generator {
	return &Generator{
		repository: repository,
		logger:     log,
		metrics:    metrics,
		logoPath:   logoPath,
	}
}

// Filename returns the suggested download filename for a patient report
func (g *Generator) Filename(patientID int64) string {
	return fmt.Sprintf("patient_%d_report.pdf", patientID)
}

// PatientReport renders the report for one patient: a title block, the
// patient information table and the appointment history table, newest
// appointment first.
func (g *Generator) PatientReport(ctx context.Context, patientID int64) ([]byte, error) {
	start := time.Now()

	patient, err := g.repository.GetPatientByID(ctx, patientID)
	if err != nil {
		g.observe("failure", start)
		return nil, err
	}

	appointments, err := g.repository.ListPatientAppointments(ctx, patientID)
	if err != nil {
		g.observe("failure", start)
		return nil, err
	}

	doc := g.buildDocument(patient, appointments)

	out, err := g.render(doc)
	if err != nil {
		g.observe("failure", start)
		g.logger.WithError(err).WithField("patient_id", patientID).Error("Failed to render patient report")
		return nil, types.NewInternalError(types.ErrCodeInternalError, "failed to render report", err)
	}

	g.observe("success", start)
	g.logger.WithFields(map[string]interface{}{
		"patient_id": patientID,
		"bytes":      len(out),
	}).Info("Generated patient report")
	return out, nil
}

// reportDocument is the layout contract of the report, kept separate from
// PDF rendering so the structure is verifiable without parsing the binary
type reportDocument struct {
	Title       string
	GeneratedAt string
	LogoPath    string
	InfoRows    [][2]string
	HistoryRows [][4]string
}

func (g *Generator) buildDocument(patient *types.Patient, appointments []*types.Appointment) *reportDocument {
	doc := &reportDocument{
		Title:       "Patient Report - " + patient.Name,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		InfoRows: [][2]string{
			{"ID", strconv.FormatInt(patient.ID, 10)},
			{"Name", patient.Name},
			{"Age", intOrNA(patient.Age)},
			{"Gender", stringOrNA(patient.Gender)},
			{"Phone", stringOrNA(patient.Phone)},
			{"Email", stringOrNA(patient.Email)},
			{"Notes", stringOrEmpty(patient.Notes)},
		},
	}

	if g.logoPath != "" {
		if _, err := os.Stat(g.logoPath); err == nil {
			doc.LogoPath = g.logoPath
		}
	}

	for _, a := range appointments {
		doc.HistoryRows = append(doc.HistoryRows, [4]string{
			a.DateTime,
			stringOrNA(a.Doctor),
			stringOrNA(a.Reason),
			a.Status,
		})
	}

	return doc
}

func (g *Generator) render(doc *reportDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	if doc.LogoPath != "" {
		pdf.ImageOptions(doc.LogoPath, 15, 10, 25, 0, false,
			gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		pdf.Ln(20)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, "Generated: "+doc.GeneratedAt, "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Patient Information", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	for _, row := range doc.InfoRows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(40, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(140, 8, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Appointment History", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	if len(doc.HistoryRows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, emptyHistoryMessage, "", 1, "L", false, 0, "")
	} else {
		widths := [4]float64{40, 45, 60, 35}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(220, 220, 220)
		for i, head := range historyHeader {
			pdf.CellFormat(widths[i], 8, head, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range doc.HistoryRows {
			for i, cell := range row {
				pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringOrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrNA(i *int64) string {
	if i == nil {
		return "N/A"
	}
	return strconv.FormatInt(*i, 10)
}

func (g *Generator) observe(status string, start time.Time) {
	if g.metrics != nil {
		g.metrics.RecordReportGeneration(status, time.Since(start))
	}
}
