package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/models"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func respondError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// currentAdmin returns the principal attached by middleware.AdminAuth.
func currentAdmin(c *gin.Context) (models.Admin, bool) {
	value, ok := c.Get(middleware.ContextAdmin)
	if !ok {
		return models.Admin{}, false
	}
	admin, ok := value.(models.Admin)
	return admin, ok
}

// requireActiveAdmin enforces endpoint-level authorization: the gate
// resolves blocked admins, endpoints reject them.
func requireActiveAdmin(c *gin.Context, route string) (models.Admin, bool) {
	admin, ok := currentAdmin(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, route, "Authentication required")
		return models.Admin{}, false
	}
	if !admin.IsAdmin || admin.IsBlocked {
		respondError(c, http.StatusForbidden, route, "Admin access required")
		return models.Admin{}, false
	}
	return admin, true
}
