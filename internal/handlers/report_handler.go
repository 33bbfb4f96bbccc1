package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/export"
	"github.com/attendance_system/pkg/utils"
)

// ReportHandler serves the admin dashboard, attendance report and its exports.
type ReportHandler struct {
	service services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type ReportQuery struct {
	From     string `form:"from" binding:"omitempty,ymd"`
	To       string `form:"to" binding:"omitempty,ymd"`
	Days     int    `form:"days" binding:"omitempty,min=1,max=366"`
	UserID   uint   `form:"user_id"`
	UserIDs  string `form:"user_ids"`
	OfficeID uint   `form:"office_id"`
	Format   string `form:"format"`
}

type DashboardQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// DashboardResponse is the report without per-day rows.
type DashboardResponse struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Days    int                   `json:"days"`
	Overall models.OverallSummary `json:"overall"`
	PerUser []models.UserSummary  `json:"per_user"`
}

func (q ReportQuery) filter() services.ReportFilter {
	f := services.ReportFilter{From: q.From, To: q.To, Days: q.Days}
	if q.UserID != 0 {
		f.UserIDs = []uint{q.UserID}
	} else {
		f.UserIDs = utils.ParseUintList(q.UserIDs)
	}
	if q.OfficeID != 0 {
		id := q.OfficeID
		f.OfficeID = &id
	}
	return f
}

// Dashboard godoc
// @Summary Attendance dashboard
// @Tags admin-reports
// @Security BearerAuth
// @Produce json
// @Param days query int false "Window length, default 30"
// @Success 200 {object} utils.SuccessResponse{data=DashboardResponse}
// @Router /admin/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	r, err := h.service.Dashboard(c.Request.Context(), q.Days)
	if err != nil {
		respondServiceError(c, err, "Could not build dashboard")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, DashboardResponse{
		From: r.From, To: r.To, Days: r.Days, Overall: r.Overall, PerUser: r.Summary,
	}, "")
}

// Report godoc
// @Summary Attendance report
// @Description from/to take precedence over days. user_id overrides user_ids.
// @Tags admin-reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param days query int false "Window length, default 7"
// @Param user_id query int false "Single user"
// @Param user_ids query string false "Comma separated user IDs"
// @Param office_id query int false "Office filter"
// @Success 200 {object} utils.SuccessResponse{data=models.AttendanceReport}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /admin/attendance/report [get]
func (h *ReportHandler) Report(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	r, err := h.service.Build(c.Request.Context(), q.filter())
	if err != nil {
		respondServiceError(c, err, "Could not build report")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, r, "")
}

// Export godoc
// @Summary Export the attendance report
// @Tags admin-reports
// @Security BearerAuth
// @Produce application/octet-stream
// @Param format query string false "csv, xlsx or pdf (default xlsx)"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param days query int false "Window length, default 7"
// @Param user_ids query string false "Comma separated user IDs"
// @Param office_id query int false "Office filter"
// @Success 200 {file} file
// @Failure 400 {object} utils.APIErrorResponse
// @Router /admin/attendance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	format, err := export.ParseFormat(q.Format)
	if err != nil {
		utils.RespondValidationError(c, gin.H{"format": err.Error()})
		return
	}
	r, err := h.service.Build(c.Request.Context(), q.filter())
	if err != nil {
		respondServiceError(c, err, "Could not build report")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAttendance(&buf, format, r); err != nil {
		utils.RespondInternalServerError(c, "Could not render export", err.Error())
		return
	}
	sendAttachment(c, export.AttendanceFilename(r)+format.Extension(), format.ContentType(), buf.Bytes())
}

func sendAttachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
