package handler

import (
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/model"
	"labqc/internal/service"
	"labqc/pkg/pagination"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TestResultHandler struct {
	testService service.TestResultService
}

func NewTestResultHandler(testService service.TestResultService) *TestResultHandler {
	return &TestResultHandler{testService: testService}
}

func (h *TestResultHandler) RegisterRoutes(router *gin.RouterGroup) {
	tests := router.Group("/test-results")
	{
		tests.POST("", middleware.RequireRole(model.QCTier), h.CreateTestResult)
		tests.GET("/:id", middleware.RequireRole(model.QCTier), h.GetTestResult)
		tests.PUT("/:id", middleware.RequireRole(model.QCTier), h.UpdateTestResult)
		tests.DELETE("/:id", middleware.RequireRole(model.QCTier), h.DeleteTestResult)
		tests.GET("/mine", middleware.RequireAuth(), h.ListMine)
	}
	router.GET("/samples/:batch_number/test-results", middleware.RequireAuth(), h.ListBySample)
}

// CreateTestResult records a measurement against a sample
// @Summary      Enter a test result
// @Description  Records one parameter measurement; each parameter may appear once per sample
// @Tags         test-results
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTestResultRequest  true  "New result"
// @Success      201      {object}  response.Response{data=model.TestResult}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /test-results [post]
func (h *TestResultHandler) CreateTestResult(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req service.CreateTestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.testService.Create(c.Request.Context(), req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GetTestResult returns one test result by id
func (h *TestResultHandler) GetTestResult(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid test result id"))
		return
	}

	result, err := h.testService.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListBySample returns all results for one sample, newest first
func (h *TestResultHandler) ListBySample(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	results, err := h.testService.ListBySample(c.Request.Context(), c.Param("batch_number"), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// ListMine returns the caller's own entered results, paginated
func (h *TestResultHandler) ListMine(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	results, total, err := h.testService.ListByUser(c.Request.Context(), caller.EmployeeID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, paginated{
		Items: results, Total: total, Page: params.Page, Limit: params.Limit,
	}))
}

// UpdateTestResult patches a result's value, unit, status or notes
func (h *TestResultHandler) UpdateTestResult(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid test result id"))
		return
	}

	var req service.UpdateTestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.testService.Update(c.Request.Context(), id, req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteTestResult removes a single result
func (h *TestResultHandler) DeleteTestResult(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid test result id"))
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "test result deleted"}))
}
