package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/attendance_system/internal/models"
)

func TestOpenMemoryMigratesSchema(t *testing.T) {
	conn, err := Open(Config{Driver: DriverSQLite, SQLitePath: memoryDSN, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		sqlDB.Close()
	})

	for _, table := range []interface{}{&models.User{}, &models.AttendanceRecord{}, &models.OfficeQRToken{}, &models.DailyReport{}} {
		assert.True(t, conn.Migrator().HasTable(table))
	}
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenCreatesDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")
	conn, err := Open(Config{SQLitePath: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	sqlDB, _ := conn.DB()
	require.NoError(t, sqlDB.Close())
	assert.FileExists(t, path)
}

func TestOpenRejectsBadDriverConfig(t *testing.T) {
	_, err := Open(Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	_, err = Open(Config{Driver: "Postgres"})
	assert.ErrorContains(t, err, "DATABASE_URL is empty")
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"trace":   logger.Info,
		"debug":   logger.Info,
		"info":    logger.Warn,
		"warn":    logger.Warn,
		"error":   logger.Error,
		"fatal":   logger.Error,
		"verbose": logger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, GormLogLevel(in), in)
	}
}
