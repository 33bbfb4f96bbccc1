package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/handlers"
	"github.com/attendance_system/internal/live"
	"github.com/attendance_system/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Attendance  *handlers.AttendanceHandler
	Office      *handlers.OfficeHandler
	Request     *handlers.RequestHandler
	Document    *handlers.DocumentHandler
	Roster      *handlers.RosterHandler
	User        *handlers.UserHandler
	Report      *handlers.ReportHandler
	DailyReport *handlers.DailyReportHandler
}

// Options carries the router settings that come from configuration.
type Options struct {
	JWTSecret       string
	Limiter         *middleware.RateLimiter
	LoginRateLimit  int
	LoginRateWindow time.Duration
	Hub             *live.Hub
	OriginPatterns  []string
	UploadDir       string
	MediaURL        string
	EnableSwagger   bool
}

// SetupRoutes 初始化所有路由
func SetupRoutes(router *gin.Engine, h Handlers, opts Options) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.UploadDir != "" {
		router.Static(opts.MediaURL, opts.UploadDir)
	}
	if opts.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiV1 := router.Group("/api/v1")
	SetupAuthRoutes(apiV1, h.Auth, opts)

	protected := apiV1.Group("")
	protected.Use(auth.JWTMiddleware(opts.JWTSecret))
	SetupEmployeeRoutes(protected, h)

	admin := protected.Group("/admin")
	admin.Use(auth.AdminOnly())
	SetupAdminRoutes(admin, h)

	if opts.Hub != nil {
		admin.GET("/attendance/live", gin.WrapF(live.ServeWS(opts.Hub, opts.OriginPatterns)))
	}
}
