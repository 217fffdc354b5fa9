package handler

import (
	"net/http"

	"automarket/internal/middleware"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Inbox returns the latest notifications and marks them all read.
func (h *NotificationHandler) Inbox(c *gin.Context) {
	list, err := h.svc.Inbox(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "notify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "notify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(id, middleware.GetUserID(c)); err != nil {
		respondError(c, "notify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(middleware.GetUserID(c)); err != nil {
		respondError(c, "notify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
