package services

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/attendance_system/internal/live"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/testutil"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []live.Message
}

func (n *recordingNotifier) Broadcast(m live.Message) {
	n.mu.Lock()
	n.msgs = append(n.msgs, m)
	n.mu.Unlock()
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Type)
	}
	return out
}

// env wires every service over one in-memory database.
type env struct {
	db         *gorm.DB
	clock      *fakeClock
	mailer     *testutil.Mailer
	notifier   *recordingNotifier
	users      repositories.UserRepository
	records    repositories.AttendanceRepository
	officeRepo repositories.OfficeRepository
	otp        *otpService
	auth       AuthService
	offices    OfficeService
	attendance *attendanceService
	requests   *requestService
}

func newEnv(t *testing.T, start time.Time) *env {
	t.Helper()
	conn := testutil.NewDB(t)
	e := &env{
		db:         conn,
		clock:      newFakeClock(start),
		mailer:     &testutil.Mailer{},
		notifier:   &recordingNotifier{},
		users:      repositories.NewGormUserRepository(conn),
		records:    repositories.NewGormAttendanceRepository(conn),
		officeRepo: repositories.NewGormOfficeRepository(conn),
	}
	e.otp = newOTPService(repositories.NewGormOTPRepository(conn), e.mailer, DefaultOTPSettings, e.clock.Now)
	e.auth = NewAuthService(conn, e.users, e.otp)
	e.offices = NewOfficeService(conn, e.officeRepo)
	e.attendance = newAttendanceService(conn, e.users, e.offices, e.records, NewDayLocker(), e.notifier, ist, e.clock.Now)
	e.requests = NewRequestService(conn, repositories.NewGormRequestRepository(conn), e.officeRepo, e.users,
		e.attendance, e.notifier).(*requestService)
	e.requests.now = e.clock.Now
	return e
}

func ptr[T any](v T) *T { return &v }
