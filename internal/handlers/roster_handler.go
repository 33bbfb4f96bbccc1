package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

type RosterHandler struct {
	service services.RosterService
}

func NewRosterHandler(service services.RosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

type CreateShiftRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm"`
}

type AssignRosterRequest struct {
	UserID   uint   `json:"user_id" binding:"required"`
	Date     string `json:"date" binding:"required,ymd"`
	OfficeID *uint  `json:"office_id"`
	ShiftID  *uint  `json:"shift_id"`
	Note     string `json:"note" binding:"omitempty,max=255"`
}

type RosterRangeQuery struct {
	From string `form:"from" binding:"omitempty,ymd"`
	To   string `form:"to" binding:"omitempty,ymd"`
}

// ListShifts godoc
// @Summary List shifts
// @Tags admin-roster
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.RosterShift}
// @Router /admin/roster/shifts [get]
func (h *RosterHandler) ListShifts(c *gin.Context) {
	shifts, err := h.service.ListShifts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Could not list shifts")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, shifts, "")
}

// CreateShift godoc
// @Summary Create a shift
// @Description An end time before the start time describes an overnight shift.
// @Tags admin-roster
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body CreateShiftRequest true "Shift"
// @Success 201 {object} utils.SuccessResponse{data=models.RosterShift}
// @Failure 409 {object} utils.APIErrorResponse "Shift name taken"
// @Router /admin/roster/shifts [post]
func (h *RosterHandler) CreateShift(c *gin.Context) {
	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	shift, err := h.service.CreateShift(c.Request.Context(), services.ShiftInput{
		Name: req.Name, StartTime: req.StartTime, EndTime: req.EndTime,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create shift")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, shift, "Shift created")
}

// Assign godoc
// @Summary Assign a user's roster for a day
// @Description Replaces any existing entry for the same user and date.
// @Tags admin-roster
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body AssignRosterRequest true "Assignment"
// @Success 200 {object} utils.SuccessResponse{data=models.RosterAssignment}
// @Failure 404 {object} utils.APIErrorResponse
// @Router /admin/roster/assign [post]
func (h *RosterHandler) Assign(c *gin.Context) {
	var req AssignRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	a, err := h.service.Assign(c.Request.Context(), services.AssignInput{
		UserID: req.UserID, Date: req.Date, OfficeID: req.OfficeID, ShiftID: req.ShiftID, Note: req.Note,
	})
	if err != nil {
		respondServiceError(c, err, "Could not assign roster")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, a, "Roster saved")
}

// ListMine godoc
// @Summary My roster
// @Tags roster
// @Security BearerAuth
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} utils.SuccessResponse{data=[]models.RosterAssignment}
// @Router /roster/me [get]
func (h *RosterHandler) ListMine(c *gin.Context) {
	var q RosterRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	out, err := h.service.ListMine(c.Request.Context(), auth.CurrentUserID(c), q.From, q.To)
	if err != nil {
		respondServiceError(c, err, "Could not load roster")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, out, "")
}
