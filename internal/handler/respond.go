package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP statuses. Anything unknown is
// logged with op and reported as a 500 without internal details.
func respondError(c *gin.Context, op string, err error) {
	var perr *service.PersistenceError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyReserved),
		errors.Is(err, service.ErrAlreadySold),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfPurchase),
		errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrSelfReview),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrImageType),
		errors.Is(err, service.ErrNoPasswordSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCreds):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &perr):
		log.Printf("[%s] persistence error: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		log.Printf("[%s] %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// idParam parses a positive uint path parameter and writes a 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
