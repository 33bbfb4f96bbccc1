package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/export"
	"github.com/attendance_system/pkg/utils"
)

type DailyReportHandler struct {
	service services.DailyReportService
}

func NewDailyReportHandler(service services.DailyReportService) *DailyReportHandler {
	return &DailyReportHandler{service: service}
}

type CreateDailyReportRequest struct {
	ReportDate  string `json:"report_date" binding:"omitempty,ymd"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

type UpdateDailyReportRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

type DailyReportQuery struct {
	From   string `form:"from" binding:"omitempty,ymd"`
	To     string `form:"to" binding:"omitempty,ymd"`
	UserID uint   `form:"user_id"`
}

// Create godoc
// @Summary Log a daily report
// @Tags daily-reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body CreateDailyReportRequest true "Report"
// @Success 201 {object} utils.SuccessResponse{data=models.DailyReport}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /daily-reports/me [post]
func (h *DailyReportHandler) Create(c *gin.Context) {
	var req CreateDailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	report, err := h.service.Create(c.Request.Context(), auth.CurrentUserID(c), services.DailyReportInput{
		ReportDate:  req.ReportDate,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.DailyReportStatus(req.Status),
	})
	if err != nil {
		respondServiceError(c, err, "Could not save daily report")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, report, "Daily report saved")
}

// ListMine godoc
// @Summary My daily reports
// @Tags daily-reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} utils.SuccessResponse{data=[]models.DailyReport}
// @Router /daily-reports/me [get]
func (h *DailyReportHandler) ListMine(c *gin.Context) {
	var q DailyReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	out, err := h.service.ListMine(c.Request.Context(), auth.CurrentUserID(c), q.From, q.To)
	if err != nil {
		respondServiceError(c, err, "Could not list daily reports")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, out, "")
}

// Update godoc
// @Summary Edit one of my daily reports
// @Tags daily-reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param payload body UpdateDailyReportRequest true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.DailyReport}
// @Failure 404 {object} utils.APIErrorResponse
// @Router /daily-reports/me/{id} [patch]
func (h *DailyReportHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	patch := services.DailyReportPatch{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		st := models.DailyReportStatus(*req.Status)
		patch.Status = &st
	}
	report, err := h.service.Update(c.Request.Context(), auth.CurrentUserID(c), id, patch)
	if err != nil {
		respondServiceError(c, err, "Could not update daily report")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "Daily report updated")
}

// ExportMine godoc
// @Summary Export my daily reports as PDF
// @Tags daily-reports
// @Security BearerAuth
// @Produce application/pdf
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /daily-reports/me/export [get]
func (h *DailyReportHandler) ExportMine(c *gin.Context) {
	var q DailyReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	out, err := h.service.Export(c.Request.Context(), q.From, q.To, auth.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, "Could not export daily reports")
		return
	}
	title := fmt.Sprintf("My Daily Reports (%s to %s)", out.From, out.To)
	h.sendPDF(c, fmt.Sprintf("my_daily_reports_%s_to_%s.pdf", out.From, out.To), title, out.Reports, false)
}

// AdminList godoc
// @Summary All daily reports
// @Tags admin-daily-reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param user_id query int false "Single user"
// @Success 200 {object} utils.SuccessResponse{data=[]models.DailyReport}
// @Router /admin/daily-reports [get]
func (h *DailyReportHandler) AdminList(c *gin.Context) {
	var q DailyReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	out, err := h.service.ListAll(c.Request.Context(), q.From, q.To, q.UserID)
	if err != nil {
		respondServiceError(c, err, "Could not list daily reports")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, out, "")
}

// AdminExport godoc
// @Summary Export daily reports as PDF
// @Tags admin-daily-reports
// @Security BearerAuth
// @Produce application/pdf
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param user_id query int false "Single user"
// @Success 200 {file} file
// @Router /admin/daily-reports/export [get]
func (h *DailyReportHandler) AdminExport(c *gin.Context) {
	var q DailyReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	out, err := h.service.Export(c.Request.Context(), q.From, q.To, q.UserID)
	if err != nil {
		respondServiceError(c, err, "Could not export daily reports")
		return
	}
	title := fmt.Sprintf("Daily Reports (%s to %s)", out.From, out.To)
	if q.UserID != 0 {
		title += fmt.Sprintf(" | user_id=%d", q.UserID)
	}
	h.sendPDF(c, fmt.Sprintf("daily_reports_%s_to_%s.pdf", out.From, out.To), title, out.Reports, true)
}

func (h *DailyReportHandler) sendPDF(c *gin.Context, filename, title string, reports []models.DailyReport, withEmployee bool) {
	var buf bytes.Buffer
	if err := export.DailyReportsPDF(&buf, title, reports, withEmployee); err != nil {
		utils.RespondInternalServerError(c, "Could not render PDF", err.Error())
		return
	}
	sendAttachment(c, filename, export.FormatPDF.ContentType(), buf.Bytes())
}
