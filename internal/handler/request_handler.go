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

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("/to-qc", middleware.RequireRole(model.RequesterTier), h.CreateToQC)
		requests.POST("/from-qc", middleware.RequireRole(model.QCTier), h.CreateFromQC)
		requests.GET("/to-qc", middleware.RequireRole(model.QCTier), h.ListToQC)
		requests.GET("/from-qc", middleware.RequireRole(model.RequesterTier), h.ListFromQC)
		requests.GET("/mine", middleware.RequireAuth(), h.ListMine)
		requests.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		requests.PUT("/:id/status", middleware.RequireRole(model.QCTier), h.UpdateStatus)
	}
}

// CreateToQC files a request from another department into the QC lab
// @Summary      Create a request to QC
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestInput  true  "New request"
// @Success      201      {object}  response.Response{data=model.Request}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /requests/to-qc [post]
func (h *RequestHandler) CreateToQC(c *gin.Context) {
	h.create(c, service.DirectionToQC)
}

// CreateFromQC files a request from the QC lab to another department
// @Summary      Create a request from QC
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestInput  true  "New request"
// @Success      201      {object}  response.Response{data=model.Request}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /requests/from-qc [post]
func (h *RequestHandler) CreateFromQC(c *gin.Context) {
	h.create(c, service.DirectionFromQC)
}

func (h *RequestHandler) create(c *gin.Context, direction service.RequestDirection) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), direction, input, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// ListToQC returns inbound requests for the QC department, paginated
func (h *RequestHandler) ListToQC(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	requests, total, err := h.requestService.ListToQC(c.Request.Context(), caller, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, paginated{
		Items: requests, Total: total, Page: params.Page, Limit: params.Limit,
	}))
}

// ListFromQC returns outbound QC requests, paginated
func (h *RequestHandler) ListFromQC(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	requests, total, err := h.requestService.ListFromQC(c.Request.Context(), caller, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, paginated{
		Items: requests, Total: total, Page: params.Page, Limit: params.Limit,
	}))
}

// ListMine returns the caller's own filed requests
func (h *RequestHandler) ListMine(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListMine(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// GetRequest returns a single request by id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	request, err := h.requestService.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// UpdateStatus transitions a pending request
// @Summary      Update request status
// @Description  Approves, rejects or cancels a pending request; terminal states accept no transitions
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Request}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /requests/{id}/status [put]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.requestService.UpdateStatus(c.Request.Context(), id, req.Status, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
