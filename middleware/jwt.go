package middleware

import (
	"bitwise74/leads-api/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAdminJWTMiddleware only lets through requests carrying an admin token,
// either as a bearer token or in the auth_token cookie
func NewAdminJWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			cookie, err := c.Cookie("auth_token")
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "No authorization token",
					"requestID": requestID,
				})
				return
			}
			tokenStr = cookie
		}

		claims, err := security.ParseAdminToken(secret, tokenStr)
		if err != nil {
			if errors.Is(err, security.ErrNotAdmin) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":     "Admin access required",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Failed to parse token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("adminID", claims.Subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}
