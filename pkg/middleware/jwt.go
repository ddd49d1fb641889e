package middleware

import (
	"net/http"
	"strings"

	"hrportal/onboarding-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessTokenCookie is the cookie the access token is stored in by the login
// handlers. The Authorization header wins when both are present.
const AccessTokenCookie = "access_token"

// NewJWTMiddleware only lets requests with a valid access token through and
// sets userID and role on the context
func NewJWTMiddleware(tokens *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(AccessTokenCookie)
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No access token provided",
				"requestID": requestID,
			})
			return
		}

		claims, err := tokens.Verify(tokenStr, security.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Access token invalid or expired. Please log in again",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected access token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
