package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/services"
)

// SetupAdminRoutes registers routes that require an admin account.
func SetupAdminRoutes(admin *gin.RouterGroup, h Handlers) {
	offices := admin.Group("/offices")
	{
		offices.GET("", h.Office.ListOffices)
		offices.POST("", h.Office.CreateOffice)
		offices.PATCH("/:id", h.Office.UpdateOffice)
		offices.POST("/:id/generate-qr", h.Office.GenerateQR)
		offices.GET("/:id/qr", h.Office.GetQR)
		offices.GET("/:id/qr.png", h.Office.QRImage)
	}

	admin.GET("/users", h.User.ListUsers)
	admin.GET("/dashboard", h.Report.Dashboard)
	admin.GET("/attendance/report", h.Report.Report)
	admin.GET("/attendance/export", h.Report.Export)

	for _, kind := range services.RequestKinds {
		admin.GET("/"+string(kind), h.Request.ListAll(kind))
		admin.POST("/"+string(kind)+"/:id/decide", h.Request.Decide(kind))
	}

	roster := admin.Group("/roster")
	{
		roster.GET("/shifts", h.Roster.ListShifts)
		roster.POST("/shifts", h.Roster.CreateShift)
		roster.POST("/assign", h.Roster.Assign)
	}

	admin.GET("/daily-reports", h.DailyReport.AdminList)
	admin.GET("/daily-reports/export", h.DailyReport.AdminExport)
}
