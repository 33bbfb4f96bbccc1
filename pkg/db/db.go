package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/attendance_system/internal/models"
)

var gormDB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultDbFile = "data/attendance.db"
	memoryDSN     = ":memory:"
)

// Config selects the database backend.
type Config struct {
	Driver     string
	SQLitePath string
	DSN        string
	LogLevel   logger.LogLevel
}

// Open connects to the configured database and migrates the schema.
// SQLite has no row locks; the attendance service adds its own per-day lock on top.
func Open(cfg Config) (*gorm.DB, error) {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Warn
	}
	zl := log.Logger.With().Str("component", "gorm").Logger()
	gormLogger := logger.New(
		&zl, // zerolog.Logger implements Printf
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver selected but DATABASE_URL is empty")
		}
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		path := cfg.SQLitePath
		if path == "" {
			path = defaultDbFile
		}
		if path != memoryDSN {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
			path += "?_foreign_keys=on&_busy_timeout=5000"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if cfg.SQLitePath == memoryDSN {
		// every pooled connection would otherwise get its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates every table of the application.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.EmployeeProfile{},
		&models.EmailOTP{},
		&models.OfficeLocation{},
		&models.OfficeQRToken{},
		&models.AttendanceRecord{},
		&models.LeaveRequest{},
		&models.RegularizationRequest{},
		&models.ResignationRequest{},
		&models.OfflineAttendanceRequest{},
		&models.EmployeeDocument{},
		&models.ESICProfile{},
		&models.RosterShift{},
		&models.RosterAssignment{},
		&models.DailyReport{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// GormLogLevel maps a zerolog level name onto gorm's coarser levels.
func GormLogLevel(level string) logger.LogLevel {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger.Warn
	}
	switch {
	case lvl <= zerolog.DebugLevel:
		return logger.Info
	case lvl == zerolog.InfoLevel, lvl == zerolog.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

// InitDB opens the process-wide database. It exits the process on failure.
func InitDB(cfg Config) {
	conn, err := Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Driver).Msg("failed to initialise database")
	}
	gormDB = conn
	log.Info().Str("driver", cfg.Driver).Msg("database connected and migrated")
}

// GetDB 返回 GORM 数据库实例
func GetDB() *gorm.DB {
	if gormDB == nil {
		log.Fatal().Msg("database not initialized, call InitDB first")
	}
	return gormDB
}

// CloseDB 关闭 GORM 数据库连接 (通常在应用退出时调用)
func CloseDB() {
	if gormDB == nil {
		return
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error().Err(err).Msg("get underlying sql.DB for closing")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("close database")
	}
	log.Info().Msg("database connection closed")
}
