package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

// RequestHandler 封装了请假、补卡、离职、线下考勤申请的 HTTP 处理逻辑
type RequestHandler struct {
	service services.RequestService
}

func NewRequestHandler(service services.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type LeaveRequestPayload struct {
	LeaveType string `json:"leave_type" binding:"required,max=32"`
	FromDate  string `json:"from_date" binding:"required,ymd"`
	ToDate    string `json:"to_date" binding:"required,ymd"`
	Reason    string `json:"reason" binding:"omitempty,max=2000"`
}

type RegularizationRequestPayload struct {
	Date              string `json:"date" binding:"required,ymd"`
	RequestedCheckIn  string `json:"requested_check_in" binding:"omitempty,hhmm"`
	RequestedCheckOut string `json:"requested_check_out" binding:"omitempty,hhmm"`
	Reason            string `json:"reason" binding:"omitempty,max=2000"`
}

type ResignationRequestPayload struct {
	LastWorkingDate string `json:"last_working_date" binding:"required,ymd"`
	Reason          string `json:"reason" binding:"omitempty,max=2000"`
}

type OfflineAttendancePayload struct {
	Date         string `json:"date" binding:"required,ymd"`
	OfficeID     uint   `json:"office_id" binding:"required"`
	CheckInTime  string `json:"check_in_time" binding:"omitempty,hhmm"`
	CheckOutTime string `json:"check_out_time" binding:"omitempty,hhmm"`
	Reason       string `json:"reason" binding:"omitempty,max=2000"`
}

type DecisionPayload struct {
	Status       string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	AdminComment string `json:"admin_comment" binding:"omitempty,max=2000"`
}

type RequestListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// CreateLeave godoc
// @Summary Apply for leave
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body LeaveRequestPayload true "Leave"
// @Success 201 {object} utils.SuccessResponse{data=models.LeaveRequest}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /leave/me [post]
func (h *RequestHandler) CreateLeave(c *gin.Context) {
	var p LeaveRequestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	req, err := h.service.CreateLeave(c.Request.Context(), auth.CurrentUserID(c), services.LeaveInput{
		LeaveType: p.LeaveType, FromDate: p.FromDate, ToDate: p.ToDate, Reason: p.Reason,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create leave request")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, req, "Leave request submitted")
}

// CreateRegularization godoc
// @Summary Request an attendance regularization
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body RegularizationRequestPayload true "Regularization"
// @Success 201 {object} utils.SuccessResponse{data=models.RegularizationRequest}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /regularization/me [post]
func (h *RequestHandler) CreateRegularization(c *gin.Context) {
	var p RegularizationRequestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	req, err := h.service.CreateRegularization(c.Request.Context(), auth.CurrentUserID(c), services.RegularizationInput{
		Date: p.Date, RequestedCheckIn: p.RequestedCheckIn, RequestedCheckOut: p.RequestedCheckOut, Reason: p.Reason,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create regularization request")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, req, "Regularization request submitted")
}

// CreateResignation godoc
// @Summary Submit a resignation
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body ResignationRequestPayload true "Resignation"
// @Success 201 {object} utils.SuccessResponse{data=models.ResignationRequest}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /resignation/me [post]
func (h *RequestHandler) CreateResignation(c *gin.Context) {
	var p ResignationRequestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	req, err := h.service.CreateResignation(c.Request.Context(), auth.CurrentUserID(c), services.ResignationInput{
		LastWorkingDate: p.LastWorkingDate, Reason: p.Reason,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create resignation request")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, req, "Resignation submitted")
}

// CreateOfflineAttendance godoc
// @Summary Request an offline attendance entry
// @Description Approval by an admin writes the day's attendance with source OFFLINE.
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body OfflineAttendancePayload true "Offline attendance"
// @Success 201 {object} utils.SuccessResponse{data=models.OfflineAttendanceRequest}
// @Failure 400 {object} utils.APIErrorResponse
// @Failure 404 {object} utils.APIErrorResponse "Office not found"
// @Router /offline-attendance/me [post]
func (h *RequestHandler) CreateOfflineAttendance(c *gin.Context) {
	var p OfflineAttendancePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	req, err := h.service.CreateOfflineAttendance(c.Request.Context(), auth.CurrentUserID(c), services.OfflineAttendanceInput{
		Date: p.Date, OfficeID: p.OfficeID, CheckInTime: p.CheckInTime, CheckOutTime: p.CheckOutTime, Reason: p.Reason,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create offline attendance request")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, req, "Offline attendance request submitted")
}

// ListMine godoc
// @Summary My requests of one kind
// @Description kind is leave, regularization, resignation or offline-attendance. The 100 newest are returned.
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /{kind}/me [get]
func (h *RequestHandler) ListMine(kind services.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := h.service.ListMine(c.Request.Context(), kind, auth.CurrentUserID(c))
		if err != nil {
			respondServiceError(c, err, "Could not list requests")
			return
		}
		utils.RespondSuccess(c, http.StatusOK, out, "")
	}
}

// ListAll godoc
// @Summary All requests of one kind
// @Tags admin-requests
// @Security BearerAuth
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/{kind} [get]
func (h *RequestHandler) ListAll(kind services.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q RequestListQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			utils.RespondBindingError(c, err)
			return
		}
		out, err := h.service.ListAll(c.Request.Context(), kind, models.RequestStatus(q.Status))
		if err != nil {
			respondServiceError(c, err, "Could not list requests")
			return
		}
		utils.RespondSuccess(c, http.StatusOK, out, "")
	}
}

// Decide godoc
// @Summary Approve or reject a pending request
// @Tags admin-requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body DecisionPayload true "Decision"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.APIErrorResponse
// @Failure 409 {object} utils.APIErrorResponse "Already decided"
// @Router /admin/{kind}/{id}/decide [post]
func (h *RequestHandler) Decide(kind services.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		var p DecisionPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			utils.RespondBindingError(c, err)
			return
		}
		req, err := h.service.Decide(c.Request.Context(), kind, id, auth.CurrentUserID(c), services.DecisionInput{
			Status:       models.RequestStatus(p.Status),
			AdminComment: p.AdminComment,
		})
		if err != nil {
			respondServiceError(c, err, "Could not decide request")
			return
		}
		utils.RespondSuccess(c, http.StatusOK, req, "Request "+p.Status)
	}
}
