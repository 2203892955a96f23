package http

import (
	"context"
	"net/http"
	"time"

	"premier-open-group/pkg/jwt"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/middleware"
	"premier-open-group/services/notification/internal/repo/cache"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const pingInterval = 30 * time.Second

type NotificationHandler struct {
	feed       *cache.LiveFeed
	jwtService *jwt.Service
	upgrader   websocket.Upgrader
	logger     *logger.Logger
}

// NewNotificationHandler accepts sockets from origins in allowedOrigins, or from
// any origin when the list contains "*".
func NewNotificationHandler(feed *cache.LiveFeed, jwtService *jwt.Service, allowedOrigins []string, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		feed:       feed,
		jwtService: jwtService,
		upgrader:   websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		logger:     logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// userID accepts the access token from the Authorization header, the portal
// cookie or the token query parameter, since browsers cannot set headers on a
// socket handshake.
func (h *NotificationHandler) userID(c *gin.Context) string {
	token, ok := middleware.TokenFromRequest(c)
	if !ok {
		return ""
	}
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return ""
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}

// HandleWebSocket godoc
// @Summary      Live member notifications
// @Description  Upgrades to a WebSocket and pushes each new notification for the signed-in member as JSON
// @Tags         notifications
// @Security     BearerAuth
// @Param        token query string false "Access token when no header or cookie is sent"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /notifications/ws [get]
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID := h.userID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	if !h.feed.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live notifications are unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.feed.Subscribe(ctx, userID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Failed to subscribe for user %s: %v", userID, err)
		return
	}

	h.logger.Info("WebSocket connected for user %s", userID)

	// Reads only drain control frames; any read error ends the session.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	messages := pubsub.Channel()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket disconnected for user %s", userID)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Warn("Failed to write WebSocket message for user %s: %v", userID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
