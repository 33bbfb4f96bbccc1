package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/testutil"
	"github.com/attendance_system/pkg/storage"
)

func TestRosterShiftsAndAssignments(t *testing.T) {
	conn := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.NewUser(t, conn, "emp@example.com")
	hq := testutil.NewOffice(t, conn, "HQ", officeLat, officeLng, 100, "")
	svc := NewRosterService(repositories.NewGormRosterRepository(conn), repositories.NewGormUserRepository(conn),
		repositories.NewGormOfficeRepository(conn), ist)

	day, err := svc.CreateShift(ctx, ShiftInput{Name: "Day", StartTime: "09:00", EndTime: "18:00:00"})
	require.NoError(t, err)
	assert.Equal(t, "18:00", day.EndTime)
	night, err := svc.CreateShift(ctx, ShiftInput{Name: "Night", StartTime: "22:00", EndTime: "06:00"})
	require.NoError(t, err, "overnight shifts are allowed")

	_, err = svc.CreateShift(ctx, ShiftInput{Name: "Day", StartTime: "10:00", EndTime: "19:00"})
	assert.ErrorIs(t, err, ErrShiftExists)
	_, err = svc.CreateShift(ctx, ShiftInput{Name: "Half", StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	shifts, err := svc.ListShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, shifts, 2)

	a, err := svc.Assign(ctx, AssignInput{UserID: u.ID, Date: "2025-03-11", OfficeID: &hq.ID, ShiftID: &day.ID})
	require.NoError(t, err)
	require.NotNil(t, a.Shift)
	assert.Equal(t, "Day", a.Shift.Name)

	// same user and date replaces the entry
	b, err := svc.Assign(ctx, AssignInput{UserID: u.ID, Date: "2025-03-11", ShiftID: &night.ID, Note: " cover "})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "cover", b.Note)
	assert.Nil(t, b.OfficeID)
	assert.Equal(t, night.ID, *b.ShiftID)

	_, err = svc.Assign(ctx, AssignInput{UserID: 999, Date: "2025-03-11"})
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.Assign(ctx, AssignInput{UserID: u.ID, Date: "2025-03-11", OfficeID: ptr(uint(999))})
	assert.ErrorIs(t, err, ErrOfficeNotFound)
	_, err = svc.Assign(ctx, AssignInput{UserID: u.ID, Date: "2025-03-11", ShiftID: ptr(uint(999))})
	assert.ErrorIs(t, err, ErrShiftNotFound)

	_, err = svc.Assign(ctx, AssignInput{UserID: u.ID, Date: "2025-03-12", ShiftID: &day.ID})
	require.NoError(t, err)
	mine, err := svc.ListMine(ctx, u.ID, "", "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-03-12", mine[0].Date)

	mine, err = svc.ListMine(ctx, u.ID, "2025-03-12", "2025-03-12")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	_, err = svc.ListMine(ctx, u.ID, "2025-03-12", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDailyReports(t *testing.T) {
	conn := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.NewUser(t, conn, "alice@example.com")
	bob := testutil.NewUser(t, conn, "bob@example.com")
	svc := NewDailyReportService(repositories.NewGormDailyReportRepository(conn), ist).(*dailyReportService)
	svc.now = func() time.Time { return morning }

	r, err := svc.Create(ctx, alice.ID, DailyReportInput{Title: " Fixed exports ", Description: "xlsx styles"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", r.ReportDate)
	assert.Equal(t, models.DailyReportInProgress, r.Status)
	assert.Equal(t, "Fixed exports", r.Title)

	_, err = svc.Create(ctx, alice.ID, DailyReportInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, alice.ID, DailyReportInput{Title: "x", Status: "BLOCKED"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, bob.ID, DailyReportInput{Title: "On call", ReportDate: "2025-03-09", Status: "done"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice.ID, DailyReportInput{Title: "Planning", ReportDate: "2025-03-09", Status: models.DailyReportTodo})
	require.NoError(t, err)

	done := models.DailyReportDone
	updated, err := svc.Update(ctx, alice.ID, r.ID, DailyReportPatch{Status: &done, Description: ptr("shipped")})
	require.NoError(t, err)
	assert.Equal(t, models.DailyReportDone, updated.Status)
	assert.Equal(t, "shipped", updated.Description)
	assert.Equal(t, "Fixed exports", updated.Title)

	_, err = svc.Update(ctx, bob.ID, r.ID, DailyReportPatch{Title: ptr("mine now")})
	assert.ErrorIs(t, err, ErrReportNotFound, "reports can only be edited by their author")

	mine, err := svc.ListMine(ctx, alice.ID, "", "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-03-10", mine[0].ReportDate)

	all, err := svc.ListAll(ctx, "2025-03-09", "2025-03-09", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "alice@example.com", all[0].User.Email)
	assert.Equal(t, "bob@example.com", all[1].User.Email)

	out, err := svc.Export(ctx, "", "", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", out.From)
	assert.Equal(t, "2025-03-10", out.To)
	require.Len(t, out.Reports, 2)
	assert.Equal(t, "2025-03-09", out.Reports[0].ReportDate)

	_, err = svc.Export(ctx, "2025-03-10", "2025-03-01", 0)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDocumentsAndESIC(t *testing.T) {
	conn := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.NewUser(t, conn, "emp@example.com")
	other := testutil.NewUser(t, conn, "other@example.com")
	root := t.TempDir()
	svc := NewDocumentService(repositories.NewGormDocumentRepository(conn), storage.NewLocalStore(root, "/media"))

	_, err := svc.Upload(ctx, u.ID, DocumentUpload{DocType: "", FileName: "a.pdf", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Upload(ctx, u.ID, DocumentUpload{DocType: "PAN"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	doc, err := svc.Upload(ctx, u.ID, DocumentUpload{DocType: "PAN", Title: "PAN card", FileName: "pan.PDF", Content: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Path, fmt.Sprintf("employee_docs/%d/", u.ID)), doc.Path)
	assert.Equal(t, ".pdf", filepath.Ext(doc.Path), "extensions are lower-cased")
	assert.Equal(t, "/media/"+doc.Path, doc.FileURL)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(doc.Path)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	docs, err := svc.ListMine(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.FileURL, docs[0].FileURL)

	assert.ErrorIs(t, svc.DeleteMine(ctx, other.ID, doc.ID), ErrDocumentNotFound)
	require.NoError(t, svc.DeleteMine(ctx, u.ID, doc.ID))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(doc.Path)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.DeleteMine(ctx, u.ID, doc.ID), ErrDocumentNotFound)

	profile, err := svc.GetESIC(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.ESICNumber)

	profile, err = svc.UpdateESIC(ctx, u.ID, ESICPatch{ESICNumber: ptr(" 31-00-123456 "), Dispensary: ptr("Okhla")})
	require.NoError(t, err)
	assert.Equal(t, "31-00-123456", profile.ESICNumber)

	again, err := svc.GetESIC(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, "Okhla", again.Dispensary)
}

func TestListEmployees(t *testing.T) {
	conn := testutil.NewDB(t)
	testutil.NewUser(t, conn, "asha@example.com")
	testutil.NewUser(t, conn, "ravi@example.com")
	testutil.NewUser(t, conn, "root@example.com", testutil.Admin())
	svc := NewUserService(repositories.NewGormUserRepository(conn))

	all, err := svc.ListEmployees(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "asha@example.com", all[0].Email)

	hits, err := svc.ListEmployees(context.Background(), " RAVI ")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ravi@example.com", hits[0].Email)
}

func TestDayLockerSerialisesSameKey(t *testing.T) {
	l := NewDayLocker()
	var mu sync.Mutex
	inside, maxInside := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(1, "2025-03-10")
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Zero(t, l.size(), "released keys are dropped")
}

func TestDayLockerIndependentKeys(t *testing.T) {
	l := NewDayLocker()
	unlockA := l.Lock(1, "2025-03-10")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock(2, "2025-03-10")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a different user must not wait on another user's day")
	}
	unlockA()
}
