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

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for user endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.POST("/reset-password", h.ResetPassword)

	// Me routes (authenticated, any valid token)
	router.GET("/me", middleware.RequireAuth(), h.GetMe)
	router.PUT("/me", middleware.RequireAuth(), h.UpdateMe)

	users := router.Group("/users")
	{
		users.POST("", middleware.RequireRole(model.AdminTier), h.Register)
		users.GET("", middleware.RequireRole(model.AdminTier), h.ListUsers)
		users.GET("/:employee_id", middleware.RequireAuth(), h.GetUser)
		users.PUT("/:employee_id/role", middleware.RequireRole(model.AdminTier), h.ChangeRole)
		users.DELETE("/:employee_id", middleware.RequireRole(model.AdminTier), h.DeleteUser)
	}
}

// Login authenticates an employee
// @Summary      Log in
// @Description  Verifies employee credentials and issues a JWT, also set as the access_token cookie
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      403      {object}  response.Response
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("access_token", token.Token, 24*3600, "/", "", false, true)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Logout clears the access token cookie
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// ResetPassword issues a fresh random password for an employee
// @Summary      Reset password
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ResetPasswordResponse}
// @Failure      404  {object}  response.Response
// @Router       /reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		EmployeeID string `json:"employee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.userService.ResetPassword(c.Request.Context(), req.EmployeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetMe returns the authenticated user's own record
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByEmployeeID(c.Request.Context(), caller.EmployeeID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateMe patches the authenticated user's own profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// Register creates a new user account
// @Summary      Register a user
// @Description  Creates a user account. Admin tier only; elevated roles require a full admin.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RegisterUserRequest  true  "New user"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ListUsers returns all user accounts, paginated
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	users, total, err := h.userService.List(c.Request.Context(), caller, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, paginated{
		Items: users, Total: total, Page: params.Page, Limit: params.Limit,
	}))
}

// GetUser returns a single user by employee id
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByEmployeeID(c.Request.Context(), c.Param("employee_id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ChangeRole updates a user's role
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id  path      string  true  "Employee ID"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /users/{employee_id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	target, err := h.userService.GetByEmployeeID(c.Request.Context(), c.Param("employee_id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), target.ID, req.Role, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeleteUser removes a user account
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	target, err := h.userService.GetByEmployeeID(c.Request.Context(), c.Param("employee_id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), target.ID, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "user deleted"}))
}
