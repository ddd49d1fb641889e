package user

import (
	"net/http"

	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

// Policy describes the input rules so that clients can validate before
// submitting. It only depends on config and is served from cache.
func Policy(c *gin.Context, d *internal.Deps) {
	c.JSON(http.StatusOK, gin.H{
		"password": gin.H{
			"minLength":     validators.PasswordMinLength,
			"maxLength":     validators.PasswordMaxLength,
			"requiresLower": true,
			"requiresUpper": true,
			"requiresDigit": true,
		},
		"phone": gin.H{
			"prefix": d.Config.Identifier.PhonePrefix,
			"length": d.Config.Identifier.PhoneLength,
		},
		"channels":       []validators.Channel{validators.ChannelEmail, validators.ChannelPhone},
		"codeTTLSeconds": int(d.Config.Code.TTL.Seconds()),
	})
}
