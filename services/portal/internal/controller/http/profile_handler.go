package http

import (
	"net/http"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase usecase.ProfileUseCase
	logger         *logger.Logger
}

func NewProfileHandler(profileUseCase usecase.ProfileUseCase, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GetMe godoc
// @Summary      Own profile
// @Description  Get the signed-in identity's profile, whatever its approval status
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Profile
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me/profile [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile, err := h.profileUseCase.GetOwn(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  UpdateProfileRequest  true  "Profile fields"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  map[string]interface{}
// @Router       /me/profile [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUseCase.UpdateOwn(c.Request.Context(), c.GetString("user_id"), req.FullName, req.Phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListUsers godoc
// @Summary      List users
// @Description  Every profile grouped by approval status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.UserGroups
// @Router       /admin/users [get]
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	groups, err := h.profileUseCase.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// SetStatus godoc
// @Summary      Approve or reject a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string         true  "User ID"
// @Param        request  body  StatusRequest  true  "pending, approved or rejected"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/status [put]
func (h *ProfileHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUseCase.SetStatus(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SetRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string       true  "User ID"
// @Param        request  body  RoleRequest  true  "admin or member"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/{id}/role [put]
func (h *ProfileHandler) SetRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUseCase.SetRole(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteUser godoc
// @Summary      Delete a user's profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *ProfileHandler) DeleteUser(c *gin.Context) {
	if err := h.profileUseCase.DeleteProfile(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
