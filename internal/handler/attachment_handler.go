package handler

import (
	"io"
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/service"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadBytes caps a single attachment upload.
const maxUploadBytes = 20 << 20 // 20 MiB

type AttachmentHandler struct {
	attachmentService service.AttachmentService
	sampleService     service.SampleService
}

func NewAttachmentHandler(attachmentService service.AttachmentService, sampleService service.SampleService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, sampleService: sampleService}
}

func (h *AttachmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/samples/:batch_number/attachments", middleware.RequireAuth(), h.Upload)
	router.GET("/samples/:batch_number/attachments", middleware.RequireAuth(), h.ListBySample)

	attachments := router.Group("/attachments")
	{
		attachments.GET("/:id/download", middleware.RequireAuth(), h.DownloadURL)
		attachments.DELETE("/:id", middleware.RequireAuth(), h.Delete)
	}
}

// Upload stores one file against a sample
// @Summary      Upload an attachment
// @Description  Stores the file, classifies it from its name and content, and records the metadata
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        batch_number  path      string  true  "Batch number"
// @Param        file          formData  file    true  "File to upload"
// @Success      201           {object}  response.Response{data=model.SampleAttachment}
// @Failure      404           {object}  response.Response
// @Failure      502           {object}  response.Response
// @Router       /samples/{batch_number}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetByBatchNumber(c.Request.Context(), c.Param("batch_number"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file in form data"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, response.Error(http.StatusRequestEntityTooLarge, "File exceeds the upload size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unreadable file: "+err.Error()))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unreadable file: "+err.Error()))
		return
	}

	attachment, err := h.attachmentService.Upload(c.Request.Context(), service.UploadAttachmentInput{
		SampleID:    sample.ID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attachment))
}

// ListBySample returns the attachments recorded against a sample
func (h *AttachmentHandler) ListBySample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetByBatchNumber(c.Request.Context(), c.Param("batch_number"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	attachments, err := h.attachmentService.ListBySample(c.Request.Context(), sample.ID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, attachments))
}

// DownloadURL returns a short-lived presigned URL for one attachment
func (h *AttachmentHandler) DownloadURL(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid attachment id"))
		return
	}

	url, err := h.attachmentService.DownloadURL(c.Request.Context(), id, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"url": url}))
}

// Delete removes an attachment's metadata and its stored file
func (h *AttachmentHandler) Delete(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid attachment id"))
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), id, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "attachment deleted"}))
}
