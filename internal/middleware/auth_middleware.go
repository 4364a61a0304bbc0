package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"concoevents/internal/helpers"
)

const (
	userIDKey = "user_id"
	emailKey  = "user_email"
	roleKey   = "user_role"
)

// JWTAuth verifies the bearer token and stores the caller's identity in
// the request context. Only the identity comes from the token; roles
// are always resolved from the users table (see RequireRole).
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authorization header missing.")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format.")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token.")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token claims.")
			c.Abort()
			return
		}

		subject, _ := claims["sub"].(string)
		userID, err := uuid.Parse(subject)
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token subject.")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		if email, ok := claims["email"].(string); ok {
			c.Set(emailKey, email)
		}

		c.Next()
	}
}

// UserID returns the verified caller identity set by JWTAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// Email returns the caller's email claim, when the token carried one.
func Email(c *gin.Context) (string, bool) {
	value, exists := c.Get(emailKey)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}

// Role returns the caller's stored role, set by RequireRole.
func Role(c *gin.Context) (string, bool) {
	value, exists := c.Get(roleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}
