package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

// AttendanceHandler 封装了扫码打卡相关的 HTTP 处理逻辑
type AttendanceHandler struct {
	service services.AttendanceService
}

func NewAttendanceHandler(service services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// MarkRequest uses pointers for the coordinates so that 0 is accepted but a
// missing value is not.
type MarkRequest struct {
	Action    string   `json:"action" binding:"required"`
	QRToken   string   `json:"qr_token" binding:"required,max=128"`
	Lat       *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng       *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
	AccuracyM *float64 `json:"accuracy_m" binding:"omitempty,gte=0"`
}

type MyAttendanceQuery struct {
	From string `form:"from" binding:"omitempty,ymd"`
	To   string `form:"to" binding:"omitempty,ymd"`
}

// Mark godoc
// @Summary Check in or check out by scanning an office QR
// @Description Validates the QR token and the device location against the office geofence.
// @Description Repeating an action for the same day returns ALREADY_CHECKED_IN or ALREADY_CHECKED_OUT.
// @Tags attendance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body MarkRequest true "Action, QR token and location"
// @Success 200 {object} utils.SuccessResponse{data=services.MarkResult}
// @Failure 400 {object} utils.APIErrorResponse "Invalid input or outside the office radius"
// @Failure 403 {object} utils.APIErrorResponse "Email not verified or account inactive"
// @Failure 404 {object} utils.APIErrorResponse "Invalid or inactive QR"
// @Failure 409 {object} utils.APIErrorResponse "Checkout without a check-in"
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	action, err := services.ParseMarkAction(req.Action)
	if err != nil {
		utils.RespondValidationError(c, gin.H{"action": err.Error()})
		return
	}

	res, err := h.service.Mark(c.Request.Context(), auth.CurrentUserID(c), services.MarkInput{
		Action:    action,
		QRToken:   req.QRToken,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		AccuracyM: req.AccuracyM,
	})
	if err != nil {
		respondServiceError(c, err, "Could not mark attendance")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, res, string(res.Status))
}

// Today godoc
// @Summary Today's attendance status
// @Tags attendance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=services.TodayStatus}
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	status, err := h.service.Today(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, "Could not load today's status")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, status, "")
}

// MyAttendance godoc
// @Summary My attendance history
// @Description Without from/to only the latest 30 days with a record are returned.
// @Tags attendance
// @Security BearerAuth
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} utils.SuccessResponse{data=[]models.AttendanceRecord}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /attendance/me [get]
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	var q MyAttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	recs, err := h.service.ListMine(c.Request.Context(), auth.CurrentUserID(c), q.From, q.To)
	if err != nil {
		respondServiceError(c, err, "Could not load attendance")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, recs, "")
}
