package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers godoc
// @Summary List employees
// @Description Active non-admin users, optionally filtered by email or name.
// @Tags admin-users
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} utils.SuccessResponse{data=[]services.MeProfile}
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListEmployees(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "Could not list users")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, users, "")
}
