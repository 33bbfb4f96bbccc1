package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/services"
)

// SetupEmployeeRoutes registers the self-service routes of a signed-in user.
func SetupEmployeeRoutes(rg *gin.RouterGroup, h Handlers) {
	attendance := rg.Group("/attendance")
	{
		attendance.POST("/mark", h.Attendance.Mark)
		attendance.GET("/today", h.Attendance.Today)
		attendance.GET("/me", h.Attendance.MyAttendance)
	}

	rg.GET("/offices", h.Office.ListOffices)

	for _, kind := range services.RequestKinds {
		rg.GET("/"+string(kind)+"/me", h.Request.ListMine(kind))
	}
	rg.POST("/leave/me", h.Request.CreateLeave)
	rg.POST("/regularization/me", h.Request.CreateRegularization)
	rg.POST("/resignation/me", h.Request.CreateResignation)
	rg.POST("/offline-attendance/me", h.Request.CreateOfflineAttendance)

	docs := rg.Group("/documents/me")
	{
		docs.GET("", h.Document.ListMine)
		docs.POST("", h.Document.Upload)
		docs.DELETE("/:id", h.Document.Delete)
	}
	rg.GET("/esic/me", h.Document.GetESIC)
	rg.PATCH("/esic/me", h.Document.UpdateESIC)

	rg.GET("/roster/me", h.Roster.ListMine)

	daily := rg.Group("/daily-reports/me")
	{
		daily.GET("", h.DailyReport.ListMine)
		daily.POST("", h.DailyReport.Create)
		daily.GET("/export", h.DailyReport.ExportMine)
		daily.PATCH("/:id", h.DailyReport.Update)
	}
}
