package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/handlers"
	"github.com/attendance_system/internal/middleware"
)

// SetupAuthRoutes 设置认证相关路由
func SetupAuthRoutes(apiV1 *gin.RouterGroup, h *handlers.AuthHandler, opts Options) {
	// 公共认证路由组
	public := apiV1.Group("/auth")
	if opts.Limiter != nil && opts.LoginRateLimit > 0 {
		public.Use(middleware.RateLimit(opts.Limiter, opts.LoginRateLimit, opts.LoginRateWindow))
	}
	{
		public.POST("/register", h.Register)
		public.POST("/verify-otp", h.VerifyOTP)
		public.POST("/resend-otp", h.ResendOTP)
		public.POST("/login", h.Login)
		public.POST("/forgot-password", h.ForgotPassword)
		public.POST("/reset-password", h.ResetPassword)
	}

	// 受保护的认证路由组
	protected := apiV1.Group("/auth")
	protected.Use(auth.JWTMiddleware(opts.JWTSecret))
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
	}
}
