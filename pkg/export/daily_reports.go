package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/attendance_system/internal/models"
)

// DailyReportsPDF renders reports grouped by date, one page per date.
// withEmployee adds the employee name and email columns for admin exports.
// reports must already be ordered by date.
func DailyReportsPDF(w io.Writer, title string, reports []models.DailyReport, withEmployee bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(true, 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 15)
	pdf.MultiCell(0, 8, tr(title), "", "C", false)
	pdf.Ln(3)

	if len(reports) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, "No reports found in selected date range.", "", 1, "L", false, 0, "")
		return pdf.Output(w)
	}

	header := []string{"Title", "Status", "Description"}
	widths := []float64{60, 25, 109}
	if withEmployee {
		header = []string{"Employee", "Email", "Title", "Status", "Description"}
		widths = []float64{32, 42, 42, 22, 56}
	}

	var day string
	for i, r := range reports {
		if r.ReportDate != day {
			if i > 0 {
				pdf.AddPage()
			}
			day = r.ReportDate
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 8, "Date: "+day, "", 1, "L", false, 0, "")
			tableHeader(pdf, widths, header)
			pdf.SetFont("Helvetica", "", 8)
		}

		cells := []string{tr(r.Title), string(r.Status), tr(r.Description)}
		if withEmployee {
			name, email := fmt.Sprintf("User #%d", r.UserID), ""
			if r.User != nil {
				email = r.User.Email
				if n := strings.TrimSpace(r.User.FullName); n != "" {
					name = n
				}
			}
			cells = append([]string{tr(name), tr(email)}, cells...)
		}
		wrappedRow(pdf, widths, cells, 4)
	}
	return pdf.Output(w)
}

// wrappedRow draws one table row whose cells wrap onto as many lines as the tallest needs.
func wrappedRow(pdf *fpdf.Fpdf, widths []float64, cells []string, lineH float64) {
	lines := 1
	for i, c := range cells {
		if n := len(pdf.SplitLines([]byte(c), widths[i]-2)); n > lines {
			lines = n
		}
	}
	h := float64(lines) * lineH

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
	}

	x, y := pdf.GetXY()
	for i, c := range cells {
		pdf.Rect(x, y, widths[i], h, "D")
		pdf.SetXY(x, y)
		pdf.MultiCell(widths[i], lineH, c, "", "L", false)
		x += widths[i]
	}
	left, _, _, _ := pdf.GetMargins()
	pdf.SetXY(left, y+h)
}
