package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hackgods/healthcare-portal/internal/appointment"
)

const exportSheet = "Appointments"

var ExportHeader = []string{
	"ID", "Date", "Time", "Status",
	"Patient", "Patient Email",
	"Provider", "Specialty", "Facility",
	"Reason", "Notes", "Created At",
}

var exportWidths = []float64{8, 12, 10, 12, 24, 30, 24, 20, 28, 40, 40, 20}

// ExportAppointments writes every appointment matching f as an XLSX workbook.
// Paging fields on f are ignored.
func (s *Service) ExportAppointments(ctx context.Context, f appointment.AdminFilter, w io.Writer) error {
	appts, err := s.allAppointments(ctx, f)
	if err != nil {
		return fmt.Errorf("load appointments for export: %w", err)
	}

	book, err := buildWorkbook(appts)
	if err != nil {
		return err
	}
	defer book.Close()

	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(appts []appointment.Appointment) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, style); err != nil {
		f.Close()
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, width := range exportWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, a := range appts {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(a)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

func exportRow(a appointment.Appointment) []any {
	return []any{
		a.ID,
		a.Date,
		a.Time,
		string(a.Status),
		joinName(a.PatientFirstName, a.PatientLastName),
		deref(a.PatientEmail),
		joinName(a.ProviderFirstName, a.ProviderLastName),
		deref(a.Specialty),
		deref(a.FacilityName),
		a.Reason,
		deref(a.Notes),
		a.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinName(first, last *string) string {
	switch {
	case first == nil && last == nil:
		return ""
	case first == nil:
		return *last
	case last == nil:
		return *first
	}
	return *first + " " + *last
}
