package handler

import (
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/model"
	"labqc/internal/service"
	"labqc/pkg/pagination"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
)

type SampleHandler struct {
	sampleService service.SampleService
}

func NewSampleHandler(sampleService service.SampleService) *SampleHandler {
	return &SampleHandler{sampleService: sampleService}
}

func (h *SampleHandler) RegisterRoutes(router *gin.RouterGroup) {
	samples := router.Group("/samples")
	{
		samples.POST("", middleware.RequireRole(model.QCTier), h.CreateSample)
		samples.GET("", middleware.RequireAuth(), h.ListSamples)
		samples.GET("/latest", middleware.RequireAuth(), h.LatestSample)
		samples.GET("/:batch_number", middleware.RequireAuth(), h.GetSample)
		samples.PUT("/:batch_number", middleware.RequireAuth(), h.UpdateSample)
		samples.DELETE("/:batch_number", middleware.RequireAuth(), h.DeleteSample)
	}
}

// CreateSample registers a collected sample and allocates its batch number
// @Summary      Create a sample
// @Description  Registers a sample; the batch number is allocated from the per-type sequence
// @Tags         samples
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSampleRequest  true  "New sample"
// @Success      201      {object}  response.Response{data=model.Sample}
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /samples [post]
func (h *SampleHandler) CreateSample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req service.CreateSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sample, err := h.sampleService.Create(c.Request.Context(), req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sample))
}

// ListSamples returns samples visible to the caller, optionally filtered by type
// @Summary      List samples
// @Tags         samples
// @Produce      json
// @Security     BearerAuth
// @Param        sample_type  query     string  false  "Filter by sample type"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {object}  response.Response
// @Router       /samples [get]
func (h *SampleHandler) ListSamples(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	samples, total, err := h.sampleService.List(c.Request.Context(), c.Query("sample_type"), caller, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, paginated{
		Items: samples, Total: total, Page: params.Page, Limit: params.Limit,
	}))
}

// LatestSample returns the most recently collected sample visible to the caller
func (h *SampleHandler) LatestSample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.LatestFor(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sample))
}

// GetSample returns a single sample by batch number
func (h *SampleHandler) GetSample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetByBatchNumber(c.Request.Context(), c.Param("batch_number"), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sample))
}

// UpdateSample patches a sample's mutable fields
func (h *SampleHandler) UpdateSample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req service.UpdateSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sample, err := h.sampleService.Update(c.Request.Context(), c.Param("batch_number"), req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sample))
}

// DeleteSample removes a sample along with its test results and attachments
// @Summary      Delete a sample
// @Description  Cascades to the sample's test results and attachments
// @Tags         samples
// @Produce      json
// @Security     BearerAuth
// @Param        batch_number  path      string  true  "Batch number"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /samples/{batch_number} [delete]
func (h *SampleHandler) DeleteSample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetByBatchNumber(c.Request.Context(), c.Param("batch_number"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sampleService.Delete(c.Request.Context(), sample.ID, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "sample deleted"}))
}
