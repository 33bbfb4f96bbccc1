package services

import (
	"context"
	"fmt"
	"time"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/pkg/utils"
)

const (
	DefaultReportDays    = 7
	DefaultDashboardDays = 30
	// MaxReportDays bounds the users x days grid a single report can build.
	MaxReportDays = 366
)

// ReportFilter selects the report window. From and To win over Days when
// both are set; otherwise the window is the Days (default 7) ending today.
type ReportFilter struct {
	From     string
	To       string
	Days     int
	UserIDs  []uint
	OfficeID *uint
}

// ReportService builds attendance reports for admins.
type ReportService interface {
	// ResolveRange turns a filter into an inclusive [from, to] pair of dates.
	ResolveRange(f ReportFilter) (from, to time.Time, err error)
	Build(ctx context.Context, f ReportFilter) (*models.AttendanceReport, error)
	// Dashboard summarises the last days (default 30) ending today, without rows.
	Dashboard(ctx context.Context, days int) (*models.AttendanceReport, error)
}

type reportService struct {
	users       repositories.UserRepository
	records     repositories.AttendanceRepository
	loc         *time.Location
	officeStart time.Duration
	now         func() time.Time
}

// NewReportService parses officeStart (HH:MM) as the late threshold.
func NewReportService(users repositories.UserRepository, records repositories.AttendanceRepository,
	loc *time.Location, officeStart string) (ReportService, error) {
	return newReportService(users, records, loc, officeStart, time.Now)
}

func newReportService(users repositories.UserRepository, records repositories.AttendanceRepository,
	loc *time.Location, officeStart string, now func() time.Time) (*reportService, error) {
	start, err := utils.ParseClock(officeStart)
	if err != nil {
		return nil, fmt.Errorf("office start %q: %w", officeStart, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{users: users, records: records, loc: loc, officeStart: start, now: now}, nil
}

func (s *reportService) ResolveRange(f ReportFilter) (time.Time, time.Time, error) {
	if f.From != "" && f.To != "" {
		from, err := utils.ParseDate(f.From, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
		}
		to, err := utils.ParseDate(f.To, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
		if daysBetween(from, to) > MaxReportDays {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: range is longer than %d days", ErrInvalidInput, MaxReportDays)
		}
		return from, to, nil
	}

	days := f.Days
	if days <= 0 {
		days = DefaultReportDays
	}
	if days > MaxReportDays {
		days = MaxReportDays
	}
	to := utils.StartOfDay(s.now(), s.loc)
	return to.AddDate(0, 0, -(days - 1)), to, nil
}

func daysBetween(from, to time.Time) int {
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

type dayKey struct {
	userID uint
	date   string
}

func (s *reportService) Build(ctx context.Context, f ReportFilter) (*models.AttendanceReport, error) {
	from, to, err := s.ResolveRange(f)
	if err != nil {
		return nil, err
	}
	fromStr, toStr := from.Format(models.WorkDateLayout), to.Format(models.WorkDateLayout)

	users, err := s.users.ListEmployees(ctx, "", f.UserIDs)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListRange(ctx, fromStr, toStr, f.UserIDs, f.OfficeID)
	if err != nil {
		return nil, err
	}
	byDay := make(map[dayKey]*models.AttendanceRecord, len(recs))
	for i := range recs {
		byDay[dayKey{recs[i].UserID, recs[i].WorkDate}] = &recs[i]
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.WorkDateLayout))
	}

	report := &models.AttendanceReport{
		From:     fromStr,
		To:       toStr,
		Days:     len(dates),
		UserIDs:  f.UserIDs,
		OfficeID: f.OfficeID,
		Summary:  make([]models.UserSummary, 0, len(users)),
		Rows:     make([]models.ReportRow, 0, len(users)*len(dates)),
	}

	for _, u := range users {
		sum := models.UserSummary{UserID: u.ID, Email: u.Email, FullName: u.FullName, TotalDays: len(dates)}
		for _, date := range dates {
			row := models.ReportRow{
				Date:     date,
				UserID:   u.ID,
				Email:    u.Email,
				FullName: u.FullName,
				Status:   models.AttendanceAbsent,
			}
			if rec, ok := byDay[dayKey{u.ID, date}]; ok {
				row.Status = models.AttendancePresent
				if rec.Office != nil {
					row.Office = rec.Office.Name
				}
				row.CheckInTime = s.clock(rec.CheckInAt)
				row.CheckOutTime = s.clock(rec.CheckOutAt)
				row.LateMinutes = s.lateMinutes(rec.CheckInAt)
				sum.PresentDays++
				if row.LateMinutes > 0 {
					sum.LateDays++
				}
			} else {
				sum.AbsentDays++
			}
			report.Rows = append(report.Rows, row)
		}
		report.Summary = append(report.Summary, sum)

		report.Overall.TotalPresentDays += sum.PresentDays
		report.Overall.TotalAbsentDays += sum.AbsentDays
		report.Overall.TotalLateDays += sum.LateDays
	}
	report.Overall.TotalUsers = len(report.Summary)
	return report, nil
}

func (s *reportService) Dashboard(ctx context.Context, days int) (*models.AttendanceReport, error) {
	if days <= 0 {
		days = DefaultDashboardDays
	}
	report, err := s.Build(ctx, ReportFilter{Days: days})
	if err != nil {
		return nil, err
	}
	report.Rows = nil
	return report, nil
}

func (s *reportService) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("15:04:05")
}

// lateMinutes is the whole minutes between office start and the local check-in time.
func (s *reportService) lateMinutes(checkIn *time.Time) int {
	if checkIn == nil {
		return 0
	}
	local := checkIn.In(s.loc)
	sinceMidnight := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second
	if sinceMidnight <= s.officeStart {
		return 0
	}
	return int((sinceMidnight - s.officeStart) / time.Minute)
}
