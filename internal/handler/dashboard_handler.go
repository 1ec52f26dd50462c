package handler

import (
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/service"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequireAuth(), h.Summary)
}

// Summary returns the caller-scoped dashboard counters
// @Summary      Dashboard counters
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
