package middleware

import (
	"net/http"

	"dojolibre/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired checks that the authenticated user is ADMIN or SUPER_ADMIN.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || !domain.IsAdmin(role.(string)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// SuperAdminRequired gates operations reserved for the SUPER_ADMIN role,
// such as granting admin roles.
func SuperAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(string) != domain.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			return
		}
		c.Next()
	}
}

// MemberRequired gates check-in/check-out routes: only MEMBER accounts ever
// appear in attendance lists. The ledger service re-checks this predicate.
func MemberRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || !domain.CanAttend(role.(string)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "members only"})
			return
		}
		c.Next()
	}
}
