package http

import (
	"net/http"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberUseCase usecase.MemberUseCase
	logger        *logger.Logger
}

func NewMemberHandler(memberUseCase usecase.MemberUseCase, logger *logger.Logger) *MemberHandler {
	return &MemberHandler{
		memberUseCase: memberUseCase,
		logger:        logger,
	}
}

// Dashboard godoc
// @Summary      Member dashboard
// @Description  Profile, progress, notifications and latest news for an approved member
// @Tags         member
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.Dashboard
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /me/dashboard [get]
func (h *MemberHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.memberUseCase.Dashboard(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetProgress godoc
// @Summary      Own progress
// @Tags         member
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.MemberProgress
// @Router       /me/progress [get]
func (h *MemberHandler) GetProgress(c *gin.Context) {
	progress, err := h.memberUseCase.GetProgress(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListNotifications godoc
// @Summary      Own notifications
// @Tags         member
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.MemberNotification
// @Router       /me/notifications [get]
func (h *MemberHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.memberUseCase.ListNotifications(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead godoc
// @Summary      Mark a notification as read
// @Tags         member
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me/notifications/{id}/read [put]
func (h *MemberHandler) MarkRead(c *gin.Context) {
	if err := h.memberUseCase.MarkRead(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// ListProgress godoc
// @Summary      Progress of every member
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.MemberProgress
// @Router       /admin/progress [get]
func (h *MemberHandler) ListProgress(c *gin.Context) {
	progress, err := h.memberUseCase.ListProgress(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// SetProgress godoc
// @Summary      Set a member's progress
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                 true  "User ID"
// @Param        request  body  usecase.ProgressInput  true  "Counters"
// @Success      200  {object}  entity.MemberProgress
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/progress [put]
func (h *MemberHandler) SetProgress(c *gin.Context) {
	var req usecase.ProgressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.memberUseCase.SetProgress(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// SendNotification godoc
// @Summary      Send a notification to a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                     true  "User ID"
// @Param        request  body  usecase.NotificationInput  true  "Title and message"
// @Success      201  {object}  entity.MemberNotification
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/notifications [post]
func (h *MemberHandler) SendNotification(c *gin.Context) {
	var req usecase.NotificationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := h.memberUseCase.SendNotification(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}
