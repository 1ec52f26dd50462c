package handler

import (
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/model"
	"labqc/internal/service"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccessRequestHandler struct {
	accessRequestService service.AccessRequestService
}

func NewAccessRequestHandler(accessRequestService service.AccessRequestService) *AccessRequestHandler {
	return &AccessRequestHandler{accessRequestService: accessRequestService}
}

func (h *AccessRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Intake is public; review is admin-tier.
	router.POST("/access-requests", h.Create)

	accessRequests := router.Group("/access-requests", middleware.RequireRole(model.AdminTier))
	{
		accessRequests.GET("", h.List)
		accessRequests.PUT("/:id/status", h.UpdateStatus)
	}
}

// Create files an account access request
// @Summary      Request access
// @Description  Files an account request for review; no authentication required
// @Tags         access-requests
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAccessRequestInput  true  "Access request"
// @Success      201      {object}  response.Response{data=model.AccessRequest}
// @Failure      409      {object}  response.Response
// @Router       /access-requests [post]
func (h *AccessRequestHandler) Create(c *gin.Context) {
	var input service.CreateAccessRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.accessRequestService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// List returns all pending and reviewed access requests
func (h *AccessRequestHandler) List(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	requests, err := h.accessRequestService.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// UpdateStatus approves or rejects an access request
func (h *AccessRequestHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid access request id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.accessRequestService.UpdateStatus(c.Request.Context(), id, req.Status, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
