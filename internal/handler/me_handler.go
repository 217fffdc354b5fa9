package handler

import (
	"net/http"

	"automarket/internal/middleware"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	auth     *service.AuthService
	listings *service.ListingService
	messages *service.MessageService
}

func NewMeHandler(auth *service.AuthService, listings *service.ListingService, messages *service.MessageService) *MeHandler {
	return &MeHandler{auth: auth, listings: listings, messages: messages}
}

func (h *MeHandler) Profile(c *gin.Context) {
	u, err := h.auth.Profile(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Listings returns the caller's listings with their sale stats.
func (h *MeHandler) Listings(c *gin.Context) {
	mine, err := h.listings.MyListings(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, mine)
}

func (h *MeHandler) Favorites(c *gin.Context) {
	list, err := h.listings.Favorites(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}

// Messages lists ?tab=received (default) or ?tab=sent.
func (h *MeHandler) Messages(c *gin.Context) {
	tab := c.DefaultQuery("tab", service.TabReceived)
	if tab != service.TabReceived && tab != service.TabSent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tab must be received or sent"})
		return
	}
	list, err := h.messages.Mailbox(middleware.GetUserID(c), tab)
	if err != nil {
		respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab, "messages": list})
}

// RegisterFCMToken saves the device token used for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.SetFCMToken(middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
