package handler

import (
	"net/http"
	"strconv"

	"automarket/internal/middleware"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin   *service.AdminService
	reviews *service.ReviewService
}

func NewAdminHandler(admin *service.AdminService, reviews *service.ReviewService) *AdminHandler {
	return &AdminHandler{admin: admin, reviews: reviews}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.admin.Dashboard(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PendingReviews handles GET /admin/reviews.
func (h *AdminHandler) PendingReviews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.reviews.Pending(limit)
	if err != nil {
		respondError(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// ModerateReview handles PATCH /admin/reviews/:id with {"approved": bool}.
func (h *AdminHandler) ModerateReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.reviews.SetApproved(id, *req.Approved); err != nil {
		respondError(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "approved": *req.Approved})
}
