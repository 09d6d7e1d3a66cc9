package middleware

import (
	"net/http"
	"strings"

	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// TokenParser 校验 token 并返回用户ID
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Auth 要求 Authorization: Bearer <token>
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Message: "No token",
			})
			return
		}

		userID, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Message: "Invalid token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
