package handler

import (
	"net/http"

	"automarket/internal/middleware"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	market *service.MarketplaceService
}

func NewTransactionHandler(market *service.MarketplaceService) *TransactionHandler {
	return &TransactionHandler{market: market}
}

// Confirm lets the seller accept a pending purchase; the listing becomes sold.
func (h *TransactionHandler) Confirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tx, err := h.market.ConfirmSale(id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, "sale", err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) Purchases(c *gin.Context) {
	list, err := h.market.Purchases(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "purchase", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *TransactionHandler) Sales(c *gin.Context) {
	list, err := h.market.Sales(middleware.GetUserID(c))
	if err != nil {
		respondError(c, "sale", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
