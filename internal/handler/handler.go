package handler

import (
	"net/http"

	"labqc/internal/middleware"
	"labqc/internal/model"
	"labqc/pkg/apperror"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// callerIdentity pulls the verified identity placed by the auth middleware.
// A missing identity means a route was wired without RequireRole; abort.
func callerIdentity(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return model.Identity{}, false
	}
	return identity, true
}

// paginated wraps a page of items with its total count.
type paginated struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
