// Package middleware contains any custom middleware used in the app
package middleware

import (
	"hrportal/onboarding-api/pkg/util"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request and sets it as requestID. The ID is echoed back in
// the X-Request-ID header.
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.NewRequestID()

		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
