package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/pkg/utils"
)

const (
	myDailyReportsLimit   = 60
	dailyReportExportDays = 7
)

type DailyReportInput struct {
	ReportDate  string
	Title       string
	Description string
	Status      models.DailyReportStatus
}

type DailyReportPatch struct {
	Title       *string
	Description *string
	Status      *models.DailyReportStatus
}

// DailyReportExport is a date-ordered slice of reports and the range it covers.
type DailyReportExport struct {
	From    string
	To      string
	Reports []models.DailyReport
}

// DailyReportService manages employee work logs.
type DailyReportService interface {
	Create(ctx context.Context, userID uint, in DailyReportInput) (*models.DailyReport, error)
	// ListMine returns the caller's reports newest first; without bounds only the latest 60.
	ListMine(ctx context.Context, userID uint, from, to string) ([]models.DailyReport, error)
	Update(ctx context.Context, userID, id uint, patch DailyReportPatch) (*models.DailyReport, error)
	// ListAll is the admin view ordered by date, user email and creation time.
	ListAll(ctx context.Context, from, to string, userID uint) ([]models.DailyReport, error)
	// Export collects reports for a PDF. userID 0 means every user. Without
	// from and to it covers the last 7 days ending today.
	Export(ctx context.Context, from, to string, userID uint) (*DailyReportExport, error)
}

type dailyReportService struct {
	reports repositories.DailyReportRepository
	loc     *time.Location
	now     func() time.Time
}

func NewDailyReportService(reports repositories.DailyReportRepository, loc *time.Location) DailyReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &dailyReportService{reports: reports, loc: loc, now: time.Now}
}

func parseDailyReportStatus(s models.DailyReportStatus) (models.DailyReportStatus, error) {
	switch st := models.DailyReportStatus(strings.ToUpper(strings.TrimSpace(string(s)))); st {
	case models.DailyReportTodo, models.DailyReportInProgress, models.DailyReportDone:
		return st, nil
	}
	return "", fmt.Errorf("%w: status must be TODO, IN_PROGRESS or DONE", ErrInvalidInput)
}

func (s *dailyReportService) optionalRange(from, to string) (string, string, error) {
	var err error
	if from != "" {
		if from, err = normalizeDate("from", from, s.loc); err != nil {
			return "", "", err
		}
	}
	if to != "" {
		if to, err = normalizeDate("to", to, s.loc); err != nil {
			return "", "", err
		}
	}
	if from != "" && to != "" && to < from {
		return "", "", ErrInvalidDateRange
	}
	return from, to, nil
}

func (s *dailyReportService) Create(ctx context.Context, userID uint, in DailyReportInput) (*models.DailyReport, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	date := s.now().In(s.loc).Format(models.WorkDateLayout)
	if in.ReportDate != "" {
		var err error
		if date, err = normalizeDate("report_date", in.ReportDate, s.loc); err != nil {
			return nil, err
		}
	}
	status := models.DailyReportInProgress
	if in.Status != "" {
		var err error
		if status, err = parseDailyReportStatus(in.Status); err != nil {
			return nil, err
		}
	}
	report := &models.DailyReport{
		UserID:      userID,
		ReportDate:  date,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *dailyReportService) ListMine(ctx context.Context, userID uint, from, to string) ([]models.DailyReport, error) {
	from, to, err := s.optionalRange(from, to)
	if err != nil {
		return nil, err
	}
	f := repositories.DailyReportFilter{UserID: userID, From: from, To: to}
	if from == "" && to == "" {
		f.Limit = myDailyReportsLimit
	}
	return s.reports.List(ctx, f)
}

func (s *dailyReportService) Update(ctx context.Context, userID, id uint, patch DailyReportPatch) (*models.DailyReport, error) {
	report, err := s.reports.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		report.Title = title
	}
	if patch.Description != nil {
		report.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if report.Status, err = parseDailyReportStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *dailyReportService) ListAll(ctx context.Context, from, to string, userID uint) ([]models.DailyReport, error) {
	from, to, err := s.optionalRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.reports.List(ctx, repositories.DailyReportFilter{UserID: userID, From: from, To: to, Ascending: true})
}

func (s *dailyReportService) Export(ctx context.Context, from, to string, userID uint) (*DailyReportExport, error) {
	if from == "" || to == "" {
		end := utils.StartOfDay(s.now(), s.loc)
		from = end.AddDate(0, 0, -(dailyReportExportDays - 1)).Format(models.WorkDateLayout)
		to = end.Format(models.WorkDateLayout)
	}
	from, to, err := s.optionalRange(from, to)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, repositories.DailyReportFilter{UserID: userID, From: from, To: to, Ascending: true})
	if err != nil {
		return nil, err
	}
	return &DailyReportExport{From: from, To: to, Reports: reports}, nil
}
