package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/testutil"
)

func newTestReportService(t *testing.T, conn *gorm.DB, now time.Time) *reportService {
	t.Helper()
	svc, err := newReportService(repositories.NewGormUserRepository(conn), repositories.NewGormAttendanceRepository(conn),
		ist, "10:00", func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func seedRecord(t *testing.T, conn *gorm.DB, userID, officeID uint, workDate string, in, out *time.Time) {
	t.Helper()
	rec := &models.AttendanceRecord{UserID: userID, WorkDate: workDate, OfficeID: &officeID, CheckInAt: in, CheckOutAt: out}
	require.NoError(t, conn.Omit("User", "Office").Create(rec).Error)
}

func TestNewReportServiceRejectsBadStart(t *testing.T) {
	_, err := NewReportService(nil, nil, ist, "ten")
	assert.Error(t, err)
}

func TestReportWithoutRecordsIsAllAbsent(t *testing.T) {
	conn := testutil.NewDB(t)
	u := testutil.NewUser(t, conn, "emp@example.com")
	testutil.NewUser(t, conn, "boss@example.com", testutil.Admin())
	svc := newTestReportService(t, conn, morning)

	r, err := svc.Build(context.Background(), ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", r.From)
	assert.Equal(t, "2025-03-10", r.To)
	assert.Equal(t, 7, r.Days)
	require.Len(t, r.Summary, 1, "admins are not reported")
	assert.Equal(t, u.ID, r.Summary[0].UserID)
	assert.Equal(t, 7, r.Summary[0].AbsentDays)
	assert.Zero(t, r.Summary[0].PresentDays)
	assert.Len(t, r.Rows, 7)
	assert.Equal(t, models.OverallSummary{TotalUsers: 1, TotalAbsentDays: 7}, r.Overall)
}

func TestReportPresentAndLate(t *testing.T) {
	conn := testutil.NewDB(t)
	u := testutil.NewUser(t, conn, "emp@example.com")
	other := testutil.NewUser(t, conn, "other@example.com")
	hq := testutil.NewOffice(t, conn, "HQ", officeLat, officeLng, 100, "")
	branch := testutil.NewOffice(t, conn, "Branch", officeLat, officeLng, 100, "")

	// 09:55 IST on time, 10:25:30 IST late by 25 minutes
	onTime := time.Date(2025, 3, 8, 4, 25, 0, 0, time.UTC)
	late := time.Date(2025, 3, 9, 4, 55, 30, 0, time.UTC)
	leave := late.Add(8 * time.Hour)
	seedRecord(t, conn, u.ID, hq.ID, "2025-03-08", &onTime, nil)
	seedRecord(t, conn, u.ID, hq.ID, "2025-03-09", &late, &leave)
	seedRecord(t, conn, other.ID, branch.ID, "2025-03-09", &onTime, nil)

	svc := newTestReportService(t, conn, morning)
	ctx := context.Background()

	r, err := svc.Build(ctx, ReportFilter{From: "2025-03-08", To: "2025-03-10", UserIDs: []uint{u.ID}})
	require.NoError(t, err)
	require.Len(t, r.Summary, 1)
	sum := r.Summary[0]
	assert.Equal(t, 3, sum.TotalDays)
	assert.Equal(t, 2, sum.PresentDays)
	assert.Equal(t, 1, sum.AbsentDays)
	assert.Equal(t, 1, sum.LateDays)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, "09:55:00", r.Rows[0].CheckInTime)
	assert.Zero(t, r.Rows[0].LateMinutes)
	assert.Equal(t, "HQ", r.Rows[0].Office)
	assert.Equal(t, "10:25:30", r.Rows[1].CheckInTime)
	assert.Equal(t, "18:25:30", r.Rows[1].CheckOutTime)
	assert.Equal(t, 25, r.Rows[1].LateMinutes)
	assert.Equal(t, models.AttendanceAbsent, r.Rows[2].Status)
	assert.Empty(t, r.Rows[2].CheckInTime)

	// an office filter turns other offices' days into absences
	r, err = svc.Build(ctx, ReportFilter{From: "2025-03-09", To: "2025-03-09", OfficeID: &branch.ID})
	require.NoError(t, err)
	require.Len(t, r.Summary, 2)
	assert.Equal(t, 0, r.Summary[0].PresentDays)
	assert.Equal(t, 1, r.Summary[1].PresentDays)
	assert.Equal(t, 1, r.Overall.TotalPresentDays)
	assert.Equal(t, 1, r.Overall.TotalAbsentDays)
}

func TestReportRange(t *testing.T) {
	svc := newTestReportService(t, testutil.NewDB(t), morning)

	from, to, err := svc.ResolveRange(ReportFilter{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-09", from.Format(models.WorkDateLayout))
	assert.Equal(t, "2025-03-10", to.Format(models.WorkDateLayout))

	// explicit bounds win over days
	from, _, err = svc.ResolveRange(ReportFilter{From: "2025-01-01", To: "2025-01-31", Days: 3})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", from.Format(models.WorkDateLayout))

	_, _, err = svc.ResolveRange(ReportFilter{From: "2025-02-01", To: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, _, err = svc.ResolveRange(ReportFilter{From: "2023-01-01", To: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = svc.ResolveRange(ReportFilter{From: "yesterday", To: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardDropsRows(t *testing.T) {
	conn := testutil.NewDB(t)
	testutil.NewUser(t, conn, "emp@example.com")
	svc := newTestReportService(t, conn, morning)

	r, err := svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, r.Days)
	assert.Nil(t, r.Rows)
	assert.Equal(t, 30, r.Overall.TotalAbsentDays)
}
