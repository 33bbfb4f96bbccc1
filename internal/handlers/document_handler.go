package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

// MaxUploadBytes caps a single document upload.
const MaxUploadBytes = 10 << 20

// DocumentHandler 封装了员工文件与 ESIC 信息的 HTTP 处理逻辑
type DocumentHandler struct {
	service services.DocumentService
}

func NewDocumentHandler(service services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

type ESICPayload struct {
	ESICNumber   *string `json:"esic_number" binding:"omitempty,max=30"`
	Dispensary   *string `json:"dispensary" binding:"omitempty,max=150"`
	BranchOffice *string `json:"branch_office" binding:"omitempty,max=150"`
}

// Upload godoc
// @Summary Upload a document
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param doc_type formData string true "Document type"
// @Param title formData string false "Title"
// @Param file formData file true "File"
// @Success 201 {object} utils.SuccessResponse{data=models.EmployeeDocument}
// @Failure 400 {object} utils.APIErrorResponse
// @Router /documents/me [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondValidationError(c, gin.H{"file": "file is required (max 10 MB)"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.RespondValidationError(c, gin.H{"file": err.Error()})
		return
	}
	defer f.Close()

	doc, err := h.service.Upload(c.Request.Context(), auth.CurrentUserID(c), services.DocumentUpload{
		DocType:  c.PostForm("doc_type"),
		Title:    c.PostForm("title"),
		FileName: fh.Filename,
		Content:  f,
	})
	if err != nil {
		respondServiceError(c, err, "Could not upload document")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, doc, "Document uploaded")
}

// ListMine godoc
// @Summary My documents
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.EmployeeDocument}
// @Router /documents/me [get]
func (h *DocumentHandler) ListMine(c *gin.Context) {
	docs, err := h.service.ListMine(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, "Could not list documents")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, docs, "")
}

// Delete godoc
// @Summary Delete one of my documents
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.APIErrorResponse
// @Router /documents/me/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteMine(c.Request.Context(), auth.CurrentUserID(c), id); err != nil {
		respondServiceError(c, err, "Could not delete document")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "Deleted")
}

// GetESIC godoc
// @Summary My ESIC details
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=models.ESICProfile}
// @Router /esic/me [get]
func (h *DocumentHandler) GetESIC(c *gin.Context) {
	profile, err := h.service.GetESIC(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, "Could not load ESIC details")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, profile, "")
}

// UpdateESIC godoc
// @Summary Update my ESIC details
// @Tags documents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body ESICPayload true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.ESICProfile}
// @Router /esic/me [patch]
func (h *DocumentHandler) UpdateESIC(c *gin.Context) {
	var p ESICPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	profile, err := h.service.UpdateESIC(c.Request.Context(), auth.CurrentUserID(c), services.ESICPatch{
		ESICNumber: p.ESICNumber, Dispensary: p.Dispensary, BranchOffice: p.BranchOffice,
	})
	if err != nil {
		respondServiceError(c, err, "Could not update ESIC details")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, profile, "ESIC details updated")
}
