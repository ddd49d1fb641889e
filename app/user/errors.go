package user

import (
	"errors"
	"net/http"

	"hrportal/onboarding-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByErr = []struct {
	err    error
	status int
	// Detailed errors carry the reason after the sentinel, e.g. which
	// password rule failed
	detailed bool
}{
	{auth.ErrInvalidIdentifier, http.StatusBadRequest, false},
	{auth.ErrInvalidInput, http.StatusBadRequest, true},
	{auth.ErrWeakPassword, http.StatusBadRequest, true},
	{auth.ErrSamePassword, http.StatusBadRequest, false},
	{auth.ErrInvalidCode, http.StatusBadRequest, false},
	{auth.ErrCodeExpired, http.StatusGone, false},
	{auth.ErrInvalidCredential, http.StatusUnauthorized, false},
	{auth.ErrUnauthorized, http.StatusUnauthorized, false},
	{auth.ErrUnverified, http.StatusForbidden, false},
	{auth.ErrDormant, http.StatusForbidden, false},
	{auth.ErrForbidden, http.StatusForbidden, false},
	{auth.ErrNotFound, http.StatusNotFound, false},
	{auth.ErrAlreadyExists, http.StatusConflict, false},
	{auth.ErrAlreadyVerified, http.StatusConflict, false},
	{auth.ErrDispatchFailed, http.StatusBadGateway, false},
}

// respondError writes the status and message of err. Unknown errors are
// logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	for _, e := range statusByErr {
		if !errors.Is(err, e.err) {
			continue
		}

		msg := e.err.Error()
		if e.detailed {
			msg = err.Error()
		}

		c.JSON(e.status, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
}

func badBody(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	c.JSON(http.StatusBadRequest, gin.H{
		"error":     "Invalid request body",
		"requestID": requestID,
	})

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
}
