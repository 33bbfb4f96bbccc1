package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
)

const myRosterLimit = 30

type ShiftInput struct {
	Name      string
	StartTime string
	EndTime   string
}

type AssignInput struct {
	UserID   uint
	Date     string
	OfficeID *uint
	ShiftID  *uint
	Note     string
}

// RosterService manages shifts and the per-day roster.
type RosterService interface {
	ListShifts(ctx context.Context) ([]models.RosterShift, error)
	CreateShift(ctx context.Context, in ShiftInput) (*models.RosterShift, error)
	// Assign creates or replaces the user's roster entry for the date.
	Assign(ctx context.Context, in AssignInput) (*models.RosterAssignment, error)
	ListMine(ctx context.Context, userID uint, from, to string) ([]models.RosterAssignment, error)
}

type rosterService struct {
	roster  repositories.RosterRepository
	users   repositories.UserRepository
	offices repositories.OfficeRepository
	loc     *time.Location
}

func NewRosterService(roster repositories.RosterRepository, users repositories.UserRepository,
	offices repositories.OfficeRepository, loc *time.Location) RosterService {
	if loc == nil {
		loc = time.UTC
	}
	return &rosterService{roster: roster, users: users, offices: offices, loc: loc}
}

func (s *rosterService) ListShifts(ctx context.Context) ([]models.RosterShift, error) {
	return s.roster.ListShifts(ctx)
}

func (s *rosterService) CreateShift(ctx context.Context, in ShiftInput) (*models.RosterShift, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	start, _, err := normalizeClock("start_time", in.StartTime)
	if err != nil {
		return nil, err
	}
	end, _, err := normalizeClock("end_time", in.EndTime)
	if err != nil {
		return nil, err
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("%w: start_time and end_time are required", ErrInvalidInput)
	}
	// end before start is an overnight shift, so no ordering check here
	shift := &models.RosterShift{Name: name, StartTime: start, EndTime: end}
	if err := s.roster.CreateShift(ctx, shift); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrShiftExists
		}
		return nil, err
	}
	return shift, nil
}

func (s *rosterService) Assign(ctx context.Context, in AssignInput) (*models.RosterAssignment, error) {
	date, err := normalizeDate("date", in.Date, s.loc)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if in.OfficeID != nil {
		if _, err := s.offices.GetByID(ctx, *in.OfficeID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return nil, ErrOfficeNotFound
			}
			return nil, err
		}
	}
	if in.ShiftID != nil {
		if _, err := s.roster.GetShift(ctx, *in.ShiftID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return nil, ErrShiftNotFound
			}
			return nil, err
		}
	}
	return s.roster.UpsertAssignment(ctx, &models.RosterAssignment{
		UserID:   in.UserID,
		Date:     date,
		OfficeID: in.OfficeID,
		ShiftID:  in.ShiftID,
		Note:     strings.TrimSpace(in.Note),
	})
}

func (s *rosterService) ListMine(ctx context.Context, userID uint, from, to string) ([]models.RosterAssignment, error) {
	var err error
	if from != "" {
		if from, err = normalizeDate("from", from, s.loc); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if to, err = normalizeDate("to", to, s.loc); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && to < from {
		return nil, ErrInvalidDateRange
	}
	limit := 0
	if from == "" && to == "" {
		limit = myRosterLimit
	}
	return s.roster.ListAssignments(ctx, userID, from, to, limit)
}
