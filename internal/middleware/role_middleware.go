package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/models"
)

// RequireRole loads the caller's profile and rejects the request unless
// the stored role is in the allow-list. A missing profile is a hard
// 403, never a silent fall-through to a default role.
func RequireRole(db *gorm.DB, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				helpers.RespondWithError(c, http.StatusForbidden, "Role not found.")
			} else {
				helpers.RespondWithError(c, http.StatusInternalServerError, "Error resolving user role.")
			}
			c.Abort()
			return
		}

		permitted := false
		for _, role := range allowed {
			if user.Role == role {
				permitted = true
				break
			}
		}
		if !permitted {
			helpers.RespondWithError(c, http.StatusForbidden, "Insufficient permissions.")
			c.Abort()
			return
		}

		c.Set(roleKey, user.Role)
		c.Next()
	}
}
