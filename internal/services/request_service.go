package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/live"
	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
)

// RequestKind names one of the employee workflow request types.
type RequestKind string

const (
	KindLeave             RequestKind = "leave"
	KindRegularization    RequestKind = "regularization"
	KindResignation       RequestKind = "resignation"
	KindOfflineAttendance RequestKind = "offline-attendance"
)

// RequestKinds lists every kind in route order.
var RequestKinds = []RequestKind{KindLeave, KindRegularization, KindResignation, KindOfflineAttendance}

const myRequestsLimit = 100

var ErrUnknownRequestKind = errors.New("unknown request type")

func ParseRequestKind(s string) (RequestKind, error) {
	switch k := RequestKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLeave, KindRegularization, KindResignation, KindOfflineAttendance:
		return k, nil
	}
	return "", ErrUnknownRequestKind
}

type LeaveInput struct {
	LeaveType string
	FromDate  string
	ToDate    string
	Reason    string
}

type RegularizationInput struct {
	Date              string
	RequestedCheckIn  string
	RequestedCheckOut string
	Reason            string
}

type ResignationInput struct {
	LastWorkingDate string
	Reason          string
}

type OfflineAttendanceInput struct {
	Date         string
	OfficeID     uint
	CheckInTime  string
	CheckOutTime string
	Reason       string
}

// DecisionInput is an admin's verdict. Status must be APPROVED or REJECTED.
type DecisionInput struct {
	Status       models.RequestStatus
	AdminComment string
}

// RequestService 定义了员工申请（请假、补卡、离职、线下考勤）的业务接口
type RequestService interface {
	CreateLeave(ctx context.Context, userID uint, in LeaveInput) (*models.LeaveRequest, error)
	CreateRegularization(ctx context.Context, userID uint, in RegularizationInput) (*models.RegularizationRequest, error)
	CreateResignation(ctx context.Context, userID uint, in ResignationInput) (*models.ResignationRequest, error)
	CreateOfflineAttendance(ctx context.Context, userID uint, in OfflineAttendanceInput) (*models.OfflineAttendanceRequest, error)
	// ListMine returns a slice of the kind's model, newest first.
	ListMine(ctx context.Context, kind RequestKind, userID uint) (interface{}, error)
	ListAll(ctx context.Context, kind RequestKind, status models.RequestStatus) (interface{}, error)
	// Decide moves a PENDING request to APPROVED or REJECTED. Approving an
	// offline attendance request also writes that day's attendance record.
	Decide(ctx context.Context, kind RequestKind, id, adminID uint, in DecisionInput) (models.WorkflowRequest, error)
}

type requestService struct {
	db         *gorm.DB
	requests   repositories.RequestRepository
	offices    repositories.OfficeRepository
	users      repositories.UserRepository
	attendance AttendanceService
	notifier   LiveNotifier
	now        func() time.Time
}

func NewRequestService(
	db *gorm.DB,
	requests repositories.RequestRepository,
	offices repositories.OfficeRepository,
	users repositories.UserRepository,
	attendance AttendanceService,
	notifier LiveNotifier,
) RequestService {
	return &requestService{
		db: db, requests: requests, offices: offices, users: users,
		attendance: attendance, notifier: notifier, now: time.Now,
	}
}

func (s *requestService) loc() *time.Location { return s.attendance.Location() }

func (s *requestService) CreateLeave(ctx context.Context, userID uint, in LeaveInput) (*models.LeaveRequest, error) {
	leaveType := strings.TrimSpace(in.LeaveType)
	if leaveType == "" {
		return nil, fmt.Errorf("%w: leave_type is required", ErrInvalidInput)
	}
	from, err := normalizeDate("from_date", in.FromDate, s.loc())
	if err != nil {
		return nil, err
	}
	to, err := normalizeDate("to_date", in.ToDate, s.loc())
	if err != nil {
		return nil, err
	}
	if to < from {
		return nil, ErrInvalidDateRange
	}
	req := &models.LeaveRequest{
		UserID:          userID,
		LeaveType:       leaveType,
		FromDate:        from,
		ToDate:          to,
		Reason:          strings.TrimSpace(in.Reason),
		RequestDecision: models.RequestDecision{Status: models.RequestStatusPending},
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) CreateRegularization(ctx context.Context, userID uint, in RegularizationInput) (*models.RegularizationRequest, error) {
	date, err := normalizeDate("date", in.Date, s.loc())
	if err != nil {
		return nil, err
	}
	checkIn, inD, err := normalizeClock("requested_check_in", in.RequestedCheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, outD, err := normalizeClock("requested_check_out", in.RequestedCheckOut)
	if err != nil {
		return nil, err
	}
	if err := checkClockOrder(checkIn, checkOut, inD, outD); err != nil {
		return nil, err
	}
	req := &models.RegularizationRequest{
		UserID:            userID,
		Date:              date,
		RequestedCheckIn:  checkIn,
		RequestedCheckOut: checkOut,
		Reason:            strings.TrimSpace(in.Reason),
		RequestDecision:   models.RequestDecision{Status: models.RequestStatusPending},
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) CreateResignation(ctx context.Context, userID uint, in ResignationInput) (*models.ResignationRequest, error) {
	last, err := normalizeDate("last_working_date", in.LastWorkingDate, s.loc())
	if err != nil {
		return nil, err
	}
	req := &models.ResignationRequest{
		UserID:          userID,
		LastWorkingDate: last,
		Reason:          strings.TrimSpace(in.Reason),
		RequestDecision: models.RequestDecision{Status: models.RequestStatusPending},
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) CreateOfflineAttendance(ctx context.Context, userID uint, in OfflineAttendanceInput) (*models.OfflineAttendanceRequest, error) {
	date, err := normalizeDate("date", in.Date, s.loc())
	if err != nil {
		return nil, err
	}
	checkIn, inD, err := normalizeClock("check_in_time", in.CheckInTime)
	if err != nil {
		return nil, err
	}
	checkOut, outD, err := normalizeClock("check_out_time", in.CheckOutTime)
	if err != nil {
		return nil, err
	}
	if err := checkClockOrder(checkIn, checkOut, inD, outD); err != nil {
		return nil, err
	}
	if _, err := s.offices.GetByID(ctx, in.OfficeID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	req := &models.OfflineAttendanceRequest{
		UserID:          userID,
		Date:            date,
		OfficeID:        in.OfficeID,
		CheckInTime:     checkIn,
		CheckOutTime:    checkOut,
		Reason:          strings.TrimSpace(in.Reason),
		RequestDecision: models.RequestDecision{Status: models.RequestStatusPending},
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func newRequestModel(kind RequestKind) (models.WorkflowRequest, error) {
	switch kind {
	case KindLeave:
		return &models.LeaveRequest{}, nil
	case KindRegularization:
		return &models.RegularizationRequest{}, nil
	case KindResignation:
		return &models.ResignationRequest{}, nil
	case KindOfflineAttendance:
		return &models.OfflineAttendanceRequest{}, nil
	}
	return nil, ErrUnknownRequestKind
}

func newRequestSlice(kind RequestKind) (interface{}, error) {
	switch kind {
	case KindLeave:
		return &[]models.LeaveRequest{}, nil
	case KindRegularization:
		return &[]models.RegularizationRequest{}, nil
	case KindResignation:
		return &[]models.ResignationRequest{}, nil
	case KindOfflineAttendance:
		return &[]models.OfflineAttendanceRequest{}, nil
	}
	return nil, ErrUnknownRequestKind
}

func (s *requestService) ListMine(ctx context.Context, kind RequestKind, userID uint) (interface{}, error) {
	dest, err := newRequestSlice(kind)
	if err != nil {
		return nil, err
	}
	if err := s.requests.ListByUser(ctx, dest, userID, myRequestsLimit); err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *requestService) ListAll(ctx context.Context, kind RequestKind, status models.RequestStatus) (interface{}, error) {
	switch status {
	case "", models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		return nil, fmt.Errorf("%w: status must be PENDING, APPROVED or REJECTED", ErrInvalidInput)
	}
	dest, err := newRequestSlice(kind)
	if err != nil {
		return nil, err
	}
	if err := s.requests.ListAll(ctx, dest, status); err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *requestService) Decide(ctx context.Context, kind RequestKind, id, adminID uint, in DecisionInput) (models.WorkflowRequest, error) {
	if in.Status != models.RequestStatusApproved && in.Status != models.RequestStatusRejected {
		return nil, fmt.Errorf("%w: status must be APPROVED or REJECTED", ErrInvalidInput)
	}

	req, err := newRequestModel(kind)
	if err != nil {
		return nil, err
	}

	// An offline approval writes attendance, so it takes the same day lock as Mark.
	if kind == KindOfflineAttendance {
		var peek models.OfflineAttendanceRequest
		if err := s.requests.GetByID(ctx, &peek, id); err != nil {
			return nil, s.notFound(err)
		}
		if peek.Status != models.RequestStatusPending {
			return nil, ErrRequestAlreadyDecided
		}
		unlock := s.attendance.Locker().Lock(peek.UserID, peek.Date)
		defer unlock()
	}

	var record *models.AttendanceRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)
		if err := requests.LockByID(ctx, req, id); err != nil {
			return s.notFound(err)
		}
		decision := req.Decision()
		if decision.Status != models.RequestStatusPending {
			return ErrRequestAlreadyDecided
		}
		now := s.now().UTC()
		decision.Status = in.Status
		decision.AdminComment = strings.TrimSpace(in.AdminComment)
		decision.DecidedByID = &adminID
		decision.DecidedAt = &now
		if err := requests.Save(ctx, req); err != nil {
			return err
		}

		if offline, ok := req.(*models.OfflineAttendanceRequest); ok && in.Status == models.RequestStatusApproved {
			rec, err := s.attendance.ApplyOffline(ctx, tx, offline)
			if err != nil {
				return err
			}
			record = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("kind", string(kind)).Uint("request_id", id).Uint("admin_id", adminID).
		Str("status", string(in.Status)).Msg("request decided")
	if record != nil {
		s.publishOffline(ctx, req.OwnerID(), record)
	}
	return req, nil
}

func (s *requestService) notFound(err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (s *requestService) publishOffline(ctx context.Context, userID uint, rec *models.AttendanceRecord) {
	if s.notifier == nil {
		return
	}
	extra := map[string]any{
		"user_id": userID,
		"date":    rec.WorkDate,
		"source":  string(models.AttendanceSourceOffline),
	}
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		extra["email"] = user.Email
		extra["full_name"] = user.FullName
	}
	s.notifier.Broadcast(live.NewMessage("attendance", "offline_approved", rec.ID, extra))
}
