package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/attendance_system/internal/models"
)

var (
	summaryHeader = []string{"user_id", "email", "name", "total_days", "present_days", "absent_days", "late_days"}
	detailHeader  = []string{"date", "user_id", "email", "name", "office", "check_in", "check_out", "status", "late_minutes"}
)

// AttendanceFilename is the download name without extension.
func AttendanceFilename(r *models.AttendanceReport) string {
	name := fmt.Sprintf("attendance_%s_to_%s", r.From, r.To)
	if len(r.UserIDs) > 0 {
		name += fmt.Sprintf("_users_%d", len(r.UserIDs))
	}
	return name
}

// WriteAttendance renders the report in the given format.
func WriteAttendance(w io.Writer, format Format, r *models.AttendanceReport) error {
	switch format {
	case FormatCSV:
		return attendanceCSV(w, r)
	case FormatXLSX:
		return attendanceXLSX(w, r)
	case FormatPDF:
		return attendancePDF(w, r)
	}
	return ErrUnknownFormat
}

func summaryRecord(s models.UserSummary) []string {
	return []string{
		strconv.FormatUint(uint64(s.UserID), 10), s.Email, s.FullName,
		strconv.Itoa(s.TotalDays), strconv.Itoa(s.PresentDays), strconv.Itoa(s.AbsentDays), strconv.Itoa(s.LateDays),
	}
}

func detailRecord(row models.ReportRow) []string {
	return []string{
		row.Date, strconv.FormatUint(uint64(row.UserID), 10), row.Email, row.FullName, row.Office,
		row.CheckInTime, row.CheckOutTime, string(row.Status), strconv.Itoa(row.LateMinutes),
	}
}

func attendanceCSV(w io.Writer, r *models.AttendanceReport) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"SUMMARY"}, summaryHeader}
	for _, s := range r.Summary {
		records = append(records, summaryRecord(s))
	}
	records = append(records, []string{}, []string{"DETAIL"}, detailHeader)
	for _, row := range r.Rows {
		records = append(records, detailRecord(row))
	}
	return cw.WriteAll(records)
}

func toRow(values []string, numeric ...int) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	for _, i := range numeric {
		if n, err := strconv.Atoi(values[i]); err == nil {
			out[i] = n
		}
	}
	return out
}

func attendanceXLSX(w io.Writer, r *models.AttendanceReport) error {
	const sheet = "Attendance"
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	absent, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "CC0000"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFEEEE"}},
	})
	if err != nil {
		return err
	}
	late, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "E65100"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF3E0"}},
	})
	if err != nil {
		return err
	}

	rowNum := 0
	put := func(values []interface{}, style int) error {
		rowNum++
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if style != 0 && len(values) > 0 {
			end, _ := excelize.CoordinatesToCellName(len(values), rowNum)
			return f.SetCellStyle(sheet, start, end, style)
		}
		return nil
	}

	if err := put([]interface{}{"SUMMARY"}, bold); err != nil {
		return err
	}
	if err := put(toRow(summaryHeader), bold); err != nil {
		return err
	}
	for _, s := range r.Summary {
		if err := put(toRow(summaryRecord(s), 0, 3, 4, 5, 6), 0); err != nil {
			return err
		}
	}
	rowNum++
	if err := put([]interface{}{"DETAIL"}, bold); err != nil {
		return err
	}
	if err := put(toRow(detailHeader), bold); err != nil {
		return err
	}
	for _, row := range r.Rows {
		style := 0
		switch {
		case row.Status == models.AttendanceAbsent:
			style = absent
		case row.LateMinutes > 0:
			style = late
		}
		if err := put(toRow(detailRecord(row), 1, 8), style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "I", 16); err != nil {
		return err
	}
	return f.Write(w)
}

func attendancePDF(w io.Writer, r *models.AttendanceReport) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Attendance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s to %s", r.From, r.To), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	sumWidths := []float64{60, 80, 25, 25, 25, 25}
	tableHeader(pdf, sumWidths, []string{"User", "Email", "Total", "Present", "Absent", "Late"})
	pdf.SetFont("Helvetica", "", 9)
	for _, s := range r.Summary {
		name := s.FullName
		if name == "" {
			name = strconv.FormatUint(uint64(s.UserID), 10)
		}
		cells := []string{tr(name), tr(s.Email), strconv.Itoa(s.TotalDays), strconv.Itoa(s.PresentDays),
			strconv.Itoa(s.AbsentDays), strconv.Itoa(s.LateDays)}
		for i, c := range cells {
			pdf.CellFormat(sumWidths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Detail", "", 1, "L", false, 0, "")
	detWidths := []float64{24, 45, 65, 45, 22, 22, 22, 22}
	detHeader := []string{"Date", "Name", "Email", "Office", "In", "Out", "Status", "Late(min)"}
	tableHeader(pdf, detWidths, detHeader)
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range r.Rows {
		if pdf.GetY() > 190 {
			pdf.AddPage()
			tableHeader(pdf, detWidths, detHeader)
			pdf.SetFont("Helvetica", "", 8)
		}
		fill := row.Status == models.AttendanceAbsent
		pdf.SetFillColor(245, 245, 245)
		cells := []string{row.Date, tr(row.FullName), tr(row.Email), tr(row.Office), row.CheckInTime,
			row.CheckOutTime, string(row.Status), strconv.Itoa(row.LateMinutes)}
		for i, c := range cells {
			switch {
			case i == 6 && row.Status == models.AttendanceAbsent:
				pdf.SetTextColor(204, 0, 0)
			case i == 7 && row.LateMinutes > 0:
				pdf.SetTextColor(230, 81, 0)
			}
			pdf.CellFormat(detWidths[i], 5, c, "1", 0, "L", fill, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, header []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(211, 211, 211)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}
