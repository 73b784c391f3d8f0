package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userContextKey = "currentUser"

// Protect authenticates the bearer token, loads the account and aborts with
// 401/403 when the token is missing, invalid or the account is deactivated.
func Protect(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, no token"})
			return
		}
		claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, token failed"})
			return
		}
		var user models.User
		if err := store.GetDB().First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User no longer exists"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Account is deactivated"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated principal set by Protect.
func CurrentUser(c *gin.Context) models.User {
	u, _ := c.Get(userContextKey)
	user, _ := u.(models.User)
	return user
}
