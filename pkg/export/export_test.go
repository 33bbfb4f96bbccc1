package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/attendance_system/internal/models"
)

func sampleReport() *models.AttendanceReport {
	return &models.AttendanceReport{
		From: "2024-05-01", To: "2024-05-02", Days: 2,
		UserIDs: []uint{3},
		Summary: []models.UserSummary{
			{UserID: 3, Email: "asha@example.com", FullName: "Asha", TotalDays: 2, PresentDays: 1, AbsentDays: 1, LateDays: 1},
		},
		Rows: []models.ReportRow{
			{Date: "2024-05-01", UserID: 3, Email: "asha@example.com", FullName: "Asha", Office: "HQ",
				CheckInTime: "10:15:00", CheckOutTime: "18:00:00", Status: models.AttendancePresent, LateMinutes: 15},
			{Date: "2024-05-02", UserID: 3, Email: "asha@example.com", FullName: "Asha", Status: models.AttendanceAbsent},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, ".pdf", f.Extension())

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAttendanceFilename(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "attendance_2024-05-01_to_2024-05-02_users_1", AttendanceFilename(r))
	r.UserIDs = nil
	assert.Equal(t, "attendance_2024-05-01_to_2024-05-02", AttendanceFilename(r))
}

func TestWriteAttendance_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, FormatCSV, sampleReport()))

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	require.NoError(t, err)

	// the blank separator line is skipped by the reader
	require.Len(t, records, 7)
	assert.Equal(t, []string{"SUMMARY"}, records[0])
	assert.Equal(t, summaryHeader, records[1])
	assert.Equal(t, []string{"3", "asha@example.com", "Asha", "2", "1", "1", "1"}, records[2])
	assert.Equal(t, []string{"DETAIL"}, records[3])
	assert.Equal(t, detailHeader, records[4])
	assert.Equal(t, "15", records[5][8])
	assert.Equal(t, "ABSENT", records[6][7])
}

func TestWriteAttendance_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, FormatXLSX, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY", rows[0][0])
	assert.Equal(t, "asha@example.com", rows[2][1])
	assert.Equal(t, "DETAIL", rows[4][0])
	assert.Equal(t, "ABSENT", rows[7][7])
}

func TestWriteAttendance_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, FormatPDF, sampleReport()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteAttendance_UnknownFormat(t *testing.T) {
	assert.ErrorIs(t, WriteAttendance(&bytes.Buffer{}, Format("doc"), sampleReport()), ErrUnknownFormat)
}

func TestDailyReportsPDF(t *testing.T) {
	reports := []models.DailyReport{
		{UserID: 1, User: &models.User{Email: "a@example.com", FullName: "A"}, ReportDate: "2024-05-01",
			Title: "Standup", Description: "Long text that needs wrapping across several lines of the description column in the table.",
			Status: models.DailyReportDone},
		{UserID: 2, ReportDate: "2024-05-02", Title: "Review", Status: models.DailyReportInProgress},
	}

	var buf bytes.Buffer
	require.NoError(t, DailyReportsPDF(&buf, "Daily Reports (2024-05-01 to 2024-05-02)", reports, true))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, DailyReportsPDF(&buf, "My Daily Reports", nil, false))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
