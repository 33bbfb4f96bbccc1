package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/handlers"
	"github.com/attendance_system/internal/live"
	"github.com/attendance_system/internal/middleware"
	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/internal/testutil"
	"github.com/attendance_system/pkg/storage"
	"github.com/attendance_system/pkg/utils"
)

const testSecret = "router-test-secret"

var kolkata = time.FixedZone("IST", 5*3600+30*60)

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	conn := testutil.NewDB(t)
	users := repositories.NewGormUserRepository(conn)
	records := repositories.NewGormAttendanceRepository(conn)
	officeRepo := repositories.NewGormOfficeRepository(conn)
	hub := live.NewHub(zerolog.Nop())

	otp := services.NewOTPService(repositories.NewGormOTPRepository(conn), &testutil.Mailer{}, services.DefaultOTPSettings)
	offices := services.NewOfficeService(conn, officeRepo)
	attendance := services.NewAttendanceService(conn, users, offices, records, services.NewDayLocker(), hub, kolkata)
	reports, err := services.NewReportService(users, records, kolkata, "10:00")
	require.NoError(t, err)

	h := Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService(conn, users, otp), testSecret, time.Hour),
		Attendance: handlers.NewAttendanceHandler(attendance),
		Office:     handlers.NewOfficeHandler(offices),
		Request: handlers.NewRequestHandler(services.NewRequestService(conn,
			repositories.NewGormRequestRepository(conn), officeRepo, users, attendance, hub)),
		Document: handlers.NewDocumentHandler(services.NewDocumentService(
			repositories.NewGormDocumentRepository(conn), storage.NewLocalStore(t.TempDir(), "/media"))),
		Roster: handlers.NewRosterHandler(services.NewRosterService(
			repositories.NewGormRosterRepository(conn), users, officeRepo, kolkata)),
		User:        handlers.NewUserHandler(services.NewUserService(users)),
		Report:      handlers.NewReportHandler(reports),
		DailyReport: handlers.NewDailyReportHandler(services.NewDailyReportService(repositories.NewGormDailyReportRepository(conn), kolkata)),
	}

	router := gin.New()
	SetupRoutes(router, h, Options{
		JWTSecret:       testSecret,
		Limiter:         middleware.NewRateLimiter(),
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
		Hub:             hub,
	})
	return &server{t: t, db: conn, router: router}
}

func (s *server) token(u *models.User) string {
	s.t.Helper()
	tok, _, err := auth.GenerateToken(testSecret, time.Hour, u)
	require.NoError(s.t, err)
	return tok
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndAuthGuards(t *testing.T) {
	s := newServer(t)
	emp := testutil.NewUser(t, s.db, "emp@example.com")

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/attendance/today", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/attendance/today", "not-a-jwt", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/attendance/today", s.token(emp), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/users", s.token(emp), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/attendance/live", s.token(emp), nil).Code)
}

func TestLoginReturnsToken(t *testing.T) {
	s := newServer(t)
	testutil.NewUser(t, s.db, "emp@example.com")

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "emp@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "emp@example.com", "password": testutil.Password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	tok, _ := data["token"].(string)
	require.NotEmpty(t, tok)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/auth/me", tok, nil).Code)
}

func TestMarkAttendance(t *testing.T) {
	s := newServer(t)
	emp := testutil.NewUser(t, s.db, "emp@example.com")
	testutil.NewOffice(t, s.db, "HQ", 28.6139, 77.2090, 100, "qr-token-1")
	tok := s.token(emp)

	w := s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_IN", "qr_token": "qr-token-1", "lng": 77.2090})
	assert.Equal(t, http.StatusBadRequest, w.Code, "lat is required")

	w = s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_IN", "qr_token": "qr-token-1", "lat": 28.6189, "lng": 77.2090})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	details := decode(t, w)["details"].(map[string]any)
	assert.Greater(t, details["distance_m"], float64(100))

	w = s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_IN", "qr_token": "nope", "lat": 28.6139, "lng": 77.2090})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_OUT", "qr_token": "qr-token-1", "lat": 28.6139, "lng": 77.2090})
	assert.Equal(t, http.StatusConflict, w.Code, "checkout needs a check-in")

	w = s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_IN", "qr_token": "qr-token-1", "lat": 28.6140, "lng": 77.2090})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "CHECKED_IN", data["status"])
	assert.Equal(t, "HQ", data["office"])

	w = s.do(http.MethodPost, "/api/v1/attendance/mark", tok, map[string]any{"action": "CHECK_IN", "qr_token": "qr-token-1", "lat": 28.6140, "lng": 77.2090})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALREADY_CHECKED_IN", decode(t, w)["data"].(map[string]any)["status"])
}

func TestAttendanceExport(t *testing.T) {
	s := newServer(t)
	admin := testutil.NewUser(t, s.db, "root@example.com", testutil.Admin())
	testutil.NewUser(t, s.db, "emp@example.com")
	tok := s.token(admin)

	w := s.do(http.MethodGet, "/api/v1/admin/attendance/export?format=csv&days=3", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Contains(t, w.Body.String(), "emp@example.com")
	assert.NotContains(t, w.Body.String(), "root@example.com")

	w = s.do(http.MethodGet, "/api/v1/admin/attendance/export?format=doc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfflineAttendanceApproval(t *testing.T) {
	s := newServer(t)
	emp := testutil.NewUser(t, s.db, "emp@example.com")
	admin := testutil.NewUser(t, s.db, "root@example.com", testutil.Admin())
	office := testutil.NewOffice(t, s.db, "Field", 28.6139, 77.2090, 100, "")
	day := time.Now().In(kolkata).AddDate(0, 0, -1).Format("2006-01-02")

	w := s.do(http.MethodPost, "/api/v1/offline-attendance/me", s.token(emp), map[string]any{
		"date": day, "office_id": office.ID, "check_in_time": "18:00", "check_out_time": "09:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "check-out before check-in")

	w = s.do(http.MethodPost, "/api/v1/offline-attendance/me", s.token(emp), map[string]any{
		"date": day, "office_id": office.ID, "check_in_time": "09:00", "check_out_time": "18:00", "reason": "client visit",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["data"].(map[string]any)["id"].(float64)

	decide := fmt.Sprintf("/api/v1/admin/offline-attendance/%d/decide", uint(id))
	w = s.do(http.MethodPost, decide, s.token(admin), map[string]string{"status": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, decide, s.token(admin), map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, decide, s.token(admin), map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/v1/attendance/me?from="+day+"&to="+day, s.token(emp), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"OFFLINE"`)
}
