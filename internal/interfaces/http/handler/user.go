package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/retailpos/backend/internal/application/identity"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// UserHandler handles staff account endpoints
type UserHandler struct {
	BaseHandler
	users *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *identityapp.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create adds a staff account
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// AssignRoleRequest is the payload for changing a user's role
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"role_id" binding:"required"`
}

// AssignRole changes a user's role
func (h *UserHandler) AssignRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.users.AssignRole(c.Request.Context(), userID, req.RoleID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ResetPasswordRequest is the payload for resetting a password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword sets a new password for a user
func (h *UserHandler) ResetPassword(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), userID, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetActiveRequest is the payload for enabling or disabling an account
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive enables or disables an account
func (h *UserHandler) SetActive(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.users.SetActive(c.Request.Context(), userID, *req.Active); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// List returns staff accounts matching the filter
func (h *UserHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, users)
}

// ListRoles returns all roles with their capabilities
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.users.ListRoles(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, roles)
}
