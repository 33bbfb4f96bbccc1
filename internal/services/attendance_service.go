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
	"github.com/attendance_system/pkg/geo"
	"github.com/attendance_system/pkg/utils"
)

// MarkAction is the requested transition.
type MarkAction string

const (
	ActionCheckIn  MarkAction = "CHECK_IN"
	ActionCheckOut MarkAction = "CHECK_OUT"
)

// ParseMarkAction accepts CHECK_IN/CHECK_OUT and the legacy CHECKIN/CHECKOUT spellings.
func ParseMarkAction(s string) (MarkAction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CHECK_IN", "CHECKIN":
		return ActionCheckIn, nil
	case "CHECK_OUT", "CHECKOUT":
		return ActionCheckOut, nil
	}
	return "", ErrInvalidAction
}

// MarkStatus is the outcome of a Mark call. The ALREADY_* values are
// idempotent no-ops, not failures.
type MarkStatus string

const (
	StatusCheckedIn         MarkStatus = "CHECKED_IN"
	StatusCheckedOut        MarkStatus = "CHECKED_OUT"
	StatusAlreadyCheckedIn  MarkStatus = "ALREADY_CHECKED_IN"
	StatusAlreadyCheckedOut MarkStatus = "ALREADY_CHECKED_OUT"
)

type MarkInput struct {
	Action    MarkAction
	QRToken   string
	Lat       float64
	Lng       float64
	AccuracyM *float64
}

type MarkResult struct {
	Status       MarkStatus `json:"status"`
	AttendanceID uint       `json:"record_id"`
	Date         string     `json:"date"`
	Office       string     `json:"office"`
	DistanceM    int        `json:"distance_m"`
}

// TodayStatus is the read-only view of the caller's current day.
type TodayStatus struct {
	Date         string     `json:"date"`
	Office       string     `json:"office"`
	CheckedIn    bool       `json:"checked_in"`
	CheckedOut   bool       `json:"checked_out"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
}

// LiveNotifier receives attendance events for the admin dashboard.
type LiveNotifier interface {
	Broadcast(msg live.Message)
}

// AttendanceService 定义了考勤打卡的业务接口
type AttendanceService interface {
	Mark(ctx context.Context, userID uint, in MarkInput) (*MarkResult, error)
	Today(ctx context.Context, userID uint) (*TodayStatus, error)
	// ListMine returns the caller's records; without bounds only the latest 30.
	ListMine(ctx context.Context, userID uint, from, to string) ([]models.AttendanceRecord, error)
	// ApplyOffline upserts the day of an approved offline request. The caller
	// holds the day lock and passes its transaction.
	ApplyOffline(ctx context.Context, tx *gorm.DB, req *models.OfflineAttendanceRequest) (*models.AttendanceRecord, error)
	// Location is the zone used for calendar dates.
	Location() *time.Location
	Locker() *DayLocker
}

type attendanceService struct {
	db       *gorm.DB
	users    repositories.UserRepository
	offices  OfficeService
	records  repositories.AttendanceRepository
	locker   *DayLocker
	notifier LiveNotifier
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceService(
	db *gorm.DB,
	users repositories.UserRepository,
	offices OfficeService,
	records repositories.AttendanceRepository,
	locker *DayLocker,
	notifier LiveNotifier,
	loc *time.Location,
) AttendanceService {
	return newAttendanceService(db, users, offices, records, locker, notifier, loc, time.Now)
}

func newAttendanceService(
	db *gorm.DB,
	users repositories.UserRepository,
	offices OfficeService,
	records repositories.AttendanceRepository,
	locker *DayLocker,
	notifier LiveNotifier,
	loc *time.Location,
	now func() time.Time,
) *attendanceService {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = NewDayLocker()
	}
	return &attendanceService{
		db: db, users: users, offices: offices, records: records,
		locker: locker, notifier: notifier, loc: loc, now: now,
	}
}

func (s *attendanceService) Location() *time.Location { return s.loc }
func (s *attendanceService) Locker() *DayLocker       { return s.locker }

func (s *attendanceService) today() (time.Time, string) {
	now := s.now()
	return now.UTC(), now.In(s.loc).Format(models.WorkDateLayout)
}

func (s *attendanceService) Mark(ctx context.Context, userID uint, in MarkInput) (*MarkResult, error) {
	if in.Action != ActionCheckIn && in.Action != ActionCheckOut {
		return nil, ErrInvalidAction
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	qr, err := s.offices.ResolveToken(ctx, in.QRToken)
	if err != nil {
		return nil, err
	}
	office := qr.Office

	dist, ok := geo.Within(geo.Point{Lat: in.Lat, Lng: in.Lng},
		geo.Point{Lat: office.Latitude, Lng: office.Longitude}, float64(office.AllowedRadiusM))
	if !ok {
		return nil, &GeofenceError{DistanceM: dist, AllowedM: office.AllowedRadiusM}
	}

	now, workDate := s.today()
	unlock := s.locker.Lock(userID, workDate)
	defer unlock()

	result := &MarkResult{Date: workDate, Office: office.Name, DistanceM: int(dist)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)
		rec, err := records.LockDay(ctx, userID, workDate)
		if err != nil {
			return fmt.Errorf("lock attendance day: %w", err)
		}
		result.AttendanceID = rec.ID

		switch in.Action {
		case ActionCheckIn:
			if rec.CheckedIn() {
				result.Status = StatusAlreadyCheckedIn
				return nil
			}
			if rec.CheckedOut() {
				// a check-in stamped now would land after the recorded checkout
				result.Status = StatusAlreadyCheckedOut
				return nil
			}
			lat, lng := in.Lat, in.Lng
			rec.OfficeID = &office.ID
			rec.CheckInAt = &now
			rec.CheckInLat, rec.CheckInLng = &lat, &lng
			rec.CheckInAccuracyM = in.AccuracyM
			rec.Source = models.AttendanceSourceOnline
			result.Status = StatusCheckedIn
		case ActionCheckOut:
			if rec.CheckedOut() {
				result.Status = StatusAlreadyCheckedOut
				return nil
			}
			if !rec.CheckedIn() {
				return ErrMustCheckInFirst
			}
			if now.Before(*rec.CheckInAt) {
				return ErrCheckOutBeforeCheckIn
			}
			lat, lng := in.Lat, in.Lng
			rec.CheckOutAt = &now
			rec.CheckOutLat, rec.CheckOutLng = &lat, &lng
			rec.CheckOutAccuracyM = in.AccuracyM
			rec.CheckOutOfficeID = &office.ID
			result.Status = StatusCheckedOut
		}
		return records.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	if result.Status == StatusCheckedIn || result.Status == StatusCheckedOut {
		log.Info().Uint("user_id", userID).Str("date", workDate).Str("status", string(result.Status)).
			Uint("office_id", office.ID).Int("distance_m", result.DistanceM).Msg("attendance marked")
		s.publish(result.Status, result.AttendanceID, user, office.Name, workDate, models.AttendanceSourceOnline)
	}
	return result, nil
}

func (s *attendanceService) publish(status MarkStatus, recordID uint, user *models.User, office, workDate string, source models.AttendanceSource) {
	if s.notifier == nil {
		return
	}
	action := "checked_in"
	if status == StatusCheckedOut {
		action = "checked_out"
	}
	s.notifier.Broadcast(live.NewMessage("attendance", action, recordID, map[string]any{
		"user_id":   user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"office":    office,
		"date":      workDate,
		"source":    string(source),
		"at":        s.now().In(s.loc).Format(time.RFC3339),
	}))
}

func (s *attendanceService) Today(ctx context.Context, userID uint) (*TodayStatus, error) {
	_, workDate := s.today()
	status := &TodayStatus{Date: workDate}

	rec, err := s.records.GetDay(ctx, userID, workDate)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return status, nil
		}
		return nil, err
	}
	if rec.Office != nil {
		status.Office = rec.Office.Name
	}
	status.CheckedIn = rec.CheckedIn()
	status.CheckedOut = rec.CheckedOut()
	status.CheckInTime = localPtr(rec.CheckInAt, s.loc)
	status.CheckOutTime = localPtr(rec.CheckOutAt, s.loc)
	return status, nil
}

func (s *attendanceService) ListMine(ctx context.Context, userID uint, from, to string) ([]models.AttendanceRecord, error) {
	limit := 0
	if from == "" && to == "" {
		limit = 30
	}
	if from != "" && to != "" && to < from {
		return nil, ErrInvalidDateRange
	}
	recs, err := s.records.ListByUser(ctx, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].CheckInAt = localPtr(recs[i].CheckInAt, s.loc)
		recs[i].CheckOutAt = localPtr(recs[i].CheckOutAt, s.loc)
	}
	return recs, nil
}

func (s *attendanceService) ApplyOffline(ctx context.Context, tx *gorm.DB, req *models.OfflineAttendanceRequest) (*models.AttendanceRecord, error) {
	day, err := utils.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}
	workDate := day.Format(models.WorkDateLayout)

	records := s.records.WithTx(tx)
	rec, err := records.LockDay(ctx, req.UserID, workDate)
	if err != nil {
		return nil, fmt.Errorf("lock attendance day: %w", err)
	}

	officeID := req.OfficeID
	rec.OfficeID = &officeID
	if req.CheckInTime != "" {
		at, err := combineLocal(day, req.CheckInTime)
		if err != nil {
			return nil, err
		}
		rec.CheckInAt = &at
	}
	if req.CheckOutTime != "" {
		at, err := combineLocal(day, req.CheckOutTime)
		if err != nil {
			return nil, err
		}
		rec.CheckOutAt = &at
	}
	if rec.CheckOutAt != nil && rec.CheckInAt == nil {
		return nil, ErrMustCheckInFirst
	}
	if rec.CheckInAt != nil && rec.CheckOutAt != nil && rec.CheckOutAt.Before(*rec.CheckInAt) {
		return nil, ErrCheckOutBeforeCheckIn
	}
	rec.Source = models.AttendanceSourceOffline
	if err := records.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// combineLocal joins a local midnight with an HH:MM[:SS] clock and returns UTC.
func combineLocal(day time.Time, clock string) (time.Time, error) {
	offset, err := utils.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).Add(offset).UTC(), nil
}

func localPtr(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
