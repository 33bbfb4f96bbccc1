// Package testutil provides an in-memory database, a recording mailer and
// fixtures for service and handler tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/pkg/db"
	"github.com/attendance_system/pkg/email"
)

// Password is the plaintext password of every user created by NewUser.
const Password = "correct-horse"

// NewDB opens a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := db.Open(db.Config{Driver: db.DriverSQLite, SQLitePath: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Mailer records every message and can be told to fail.
type Mailer struct {
	mu   sync.Mutex
	Sent []email.Message
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recent message; ok is false when nothing was sent.
func (m *Mailer) Last() (email.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return email.Message{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// UserOption tweaks a user before it is inserted.
type UserOption func(*models.User)

func Unverified() UserOption {
	return func(u *models.User) { u.IsVerified, u.IsActive = false, false }
}

func Inactive() UserOption {
	return func(u *models.User) { u.IsActive = false }
}

func Admin() UserOption {
	return func(u *models.User) { u.IsAdmin = true }
}

// NewUser inserts a verified, active user whose password is Password.
func NewUser(t testing.TB, conn *gorm.DB, addr string, opts ...UserOption) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:        addr,
		PasswordHash: string(hash),
		FullName:     "Test " + addr,
		IsVerified:   true,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, conn.Create(u).Error)
	return u
}

// NewOffice inserts an active office with an active QR token.
func NewOffice(t testing.TB, conn *gorm.DB, name string, lat, lng float64, radiusM int, token string) *models.OfficeLocation {
	t.Helper()
	office := &models.OfficeLocation{Name: name, Latitude: lat, Longitude: lng, AllowedRadiusM: radiusM, IsActive: true}
	require.NoError(t, conn.Create(office).Error)
	if token != "" {
		qr := &models.OfficeQRToken{OfficeID: office.ID, Token: token, IsActive: true}
		require.NoError(t, conn.Create(qr).Error)
		office.QR = qr
	}
	return office
}
