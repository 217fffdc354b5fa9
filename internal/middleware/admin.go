package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaffRequired checks that the authenticated user is a staff account.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_staff") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}
