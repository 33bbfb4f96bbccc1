package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	config "github.com/attendance_system/configs"
	_ "github.com/attendance_system/docs"
	"github.com/attendance_system/internal/handlers"
	"github.com/attendance_system/internal/live"
	"github.com/attendance_system/internal/middleware"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/routes"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/db"
	"github.com/attendance_system/pkg/email"
	"github.com/attendance_system/pkg/logger"
	"github.com/attendance_system/pkg/storage"
	"github.com/attendance_system/pkg/utils"
)

// @title Attendance System API
// @version 1.0
// @description Email OTP sign-up, geofenced QR attendance and HR workflows.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	appLogger := logger.Setup(cfg.LogLevel, cfg.LogPretty)

	// 初始化数据库连接
	db.InitDB(db.Config{
		Driver:     cfg.DBDriver,
		SQLitePath: cfg.SQLitePath,
		DSN:        cfg.DatabaseURL,
		LogLevel:   db.GormLogLevel(cfg.LogLevel),
	})
	defer db.CloseDB()
	conn := db.GetDB()

	mailer, err := email.New(email.Settings{
		Backend: cfg.MailBackend,
		From:    cfg.DefaultFromEmail,
		SMTP: email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.DefaultFromEmail,
		},
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MailBackend).Msg("mail backend")
	}

	hub := live.NewHub(appLogger.With().Str("component", "live").Logger())

	userRepo := repositories.NewGormUserRepository(conn)
	otpRepo := repositories.NewGormOTPRepository(conn)
	officeRepo := repositories.NewGormOfficeRepository(conn)
	attendanceRepo := repositories.NewGormAttendanceRepository(conn)
	requestRepo := repositories.NewGormRequestRepository(conn)
	documentRepo := repositories.NewGormDocumentRepository(conn)
	rosterRepo := repositories.NewGormRosterRepository(conn)
	dailyReportRepo := repositories.NewGormDailyReportRepository(conn)

	otpService := services.NewOTPService(otpRepo, mailer, services.OTPSettings{
		Expiry:     cfg.OTPExpiry,
		Cooldown:   cfg.OTPCooldown,
		MaxPerHour: cfg.OTPMaxPerHour,
	})
	authService := services.NewAuthService(conn, userRepo, otpService)
	officeService := services.NewOfficeService(conn, officeRepo)
	attendanceService := services.NewAttendanceService(conn, userRepo, officeService, attendanceRepo,
		services.NewDayLocker(), hub, cfg.Location)
	requestService := services.NewRequestService(conn, requestRepo, officeRepo, userRepo, attendanceService, hub)
	documentService := services.NewDocumentService(documentRepo, storage.NewLocalStore(cfg.UploadDir, cfg.MediaURL))
	rosterService := services.NewRosterService(rosterRepo, userRepo, officeRepo, cfg.Location)
	reportService, err := services.NewReportService(userRepo, attendanceRepo, cfg.Location, cfg.OfficeStart)
	if err != nil {
		log.Fatal().Err(err).Msg("report service")
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := utils.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("validators")
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLogger))

	limiter := middleware.NewRateLimiter()
	stop := make(chan struct{})
	limiter.StartCleanup(5*time.Minute, stop)

	routes.SetupRoutes(router, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecret, cfg.JWTTTL),
		Attendance:  handlers.NewAttendanceHandler(attendanceService),
		Office:      handlers.NewOfficeHandler(officeService),
		Request:     handlers.NewRequestHandler(requestService),
		Document:    handlers.NewDocumentHandler(documentService),
		Roster:      handlers.NewRosterHandler(rosterService),
		User:        handlers.NewUserHandler(services.NewUserService(userRepo)),
		Report:      handlers.NewReportHandler(reportService),
		DailyReport: handlers.NewDailyReportHandler(services.NewDailyReportService(dailyReportRepo, cfg.Location)),
	}, routes.Options{
		JWTSecret:       cfg.JWTSecret,
		Limiter:         limiter,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
		Hub:             hub,
		OriginPatterns:  cfg.LiveOrigins,
		UploadDir:       cfg.UploadDir,
		MediaURL:        cfg.MediaURL,
		EnableSwagger:   cfg.EnableSwagger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("tz", cfg.TimeZone).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
