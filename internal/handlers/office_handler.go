package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

// OfficeHandler 封装了办公地点和二维码管理的 HTTP 处理逻辑 (admin only)
type OfficeHandler struct {
	service services.OfficeService
}

func NewOfficeHandler(service services.OfficeService) *OfficeHandler {
	return &OfficeHandler{service: service}
}

type CreateOfficeRequest struct {
	Name           string   `json:"name" binding:"required,max=150"`
	Address        string   `json:"address" binding:"omitempty,max=500"`
	Latitude       *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	AllowedRadiusM int      `json:"allowed_radius_m" binding:"omitempty,min=1,max=100000"`
	IsActive       *bool    `json:"is_active"`
}

type UpdateOfficeRequest struct {
	Name           *string  `json:"name" binding:"omitempty,max=150"`
	Address        *string  `json:"address" binding:"omitempty,max=500"`
	Latitude       *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	AllowedRadiusM *int     `json:"allowed_radius_m" binding:"omitempty,min=1,max=100000"`
	IsActive       *bool    `json:"is_active"`
}

// ListOffices godoc
// @Summary List offices
// @Tags admin-offices
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.OfficeLocation}
// @Router /admin/offices [get]
func (h *OfficeHandler) ListOffices(c *gin.Context) {
	offices, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Could not list offices")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, offices, "")
}

// CreateOffice godoc
// @Summary Create an office
// @Tags admin-offices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param office body CreateOfficeRequest true "Office"
// @Success 201 {object} utils.SuccessResponse{data=models.OfficeLocation}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /admin/offices [post]
func (h *OfficeHandler) CreateOffice(c *gin.Context) {
	var req CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	office, err := h.service.Create(c.Request.Context(), services.OfficeInput{
		Name:           req.Name,
		Address:        req.Address,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		AllowedRadiusM: req.AllowedRadiusM,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err, "Could not create office")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, office, "Office created")
}

// UpdateOffice godoc
// @Summary Update an office
// @Description Only the fields present in the body change.
// @Tags admin-offices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Office ID"
// @Param office body UpdateOfficeRequest true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.OfficeLocation}
// @Failure 404 {object} utils.APIErrorResponse
// @Router /admin/offices/{id} [patch]
func (h *OfficeHandler) UpdateOffice(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	office, err := h.service.Update(c.Request.Context(), id, services.OfficePatch{
		Name:           req.Name,
		Address:        req.Address,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AllowedRadiusM: req.AllowedRadiusM,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err, "Could not update office")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, office, "Office updated")
}

// GenerateQR godoc
// @Summary Generate or rotate the office QR token
// @Description The previous token stops working immediately.
// @Tags admin-offices
// @Security BearerAuth
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} utils.SuccessResponse{data=models.OfficeQRToken}
// @Failure 404 {object} utils.APIErrorResponse "Office not found or inactive"
// @Router /admin/offices/{id}/generate-qr [post]
func (h *OfficeHandler) GenerateQR(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	qr, err := h.service.GenerateQR(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Could not generate QR")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, qr, "QR generated")
}

// GetQR godoc
// @Summary Current office QR token
// @Tags admin-offices
// @Security BearerAuth
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} utils.SuccessResponse{data=models.OfficeQRToken}
// @Failure 404 {object} utils.APIErrorResponse
// @Router /admin/offices/{id}/qr [get]
func (h *OfficeHandler) GetQR(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	qr, err := h.service.GetQR(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Could not load QR")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, qr, "")
}

// QRImage godoc
// @Summary Office QR as PNG
// @Tags admin-offices
// @Security BearerAuth
// @Produce png
// @Param id path int true "Office ID"
// @Param size query int false "Edge length in pixels" default(320)
// @Success 200 {file} binary
// @Failure 404 {object} utils.APIErrorResponse
// @Router /admin/offices/{id}/qr.png [get]
func (h *OfficeHandler) QRImage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.service.QRCodePNG(c.Request.Context(), id, size)
	if err != nil {
		respondServiceError(c, err, "Could not render QR")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
