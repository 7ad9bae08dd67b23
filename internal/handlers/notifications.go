package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/stackitdev/stackit/internal/auth"
	"github.com/stackitdev/stackit/internal/notifications"
	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/response"
)

// NotificationHandler exposes the recipient-facing notification inbox and
// the live WebSocket stream.
type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *notifications.Hub
	jwt           *iauth.JWTService
}

func NewNotificationHandler(svc *services.NotificationService, hub *notifications.Hub, jwt *iauth.JWTService) *NotificationHandler {
	return &NotificationHandler{notifications: svc, hub: hub, jwt: jwt}
}

// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	rows, err := h.notifications.ListForUser(requestContext(c), services.ListNotificationsInput{
		UserID: currentUserID(c),
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, err := h.notifications.MarkRead(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, notification)
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(requestContext(c), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Stream upgrades the request to a WebSocket delivering this user's
// notification events. The token may arrive as a query parameter because
// browser WebSocket clients cannot set headers.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(userID, c.Writer, c.Request)
}
