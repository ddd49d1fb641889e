package user

import (
	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/api/auth"
)

// setSessionCookies mirrors the tokens of s into http-only cookies for
// browser clients. The refresh cookie is left alone when s carries none.
func setSessionCookies(c *gin.Context, d *internal.Deps, s *auth.Session) {
	secure := d.Config.Host.SSL.Enabled

	c.SetCookie(middleware.AccessTokenCookie, s.AccessToken, int(d.Tokens.AccessTTL().Seconds()), "/", "", secure, true)

	if s.RefreshToken != "" {
		c.SetCookie(refreshTokenCookie, s.RefreshToken, int(d.Tokens.RefreshTTL().Seconds()), refreshCookiePath, "", secure, true)
	}
}

func clearSessionCookies(c *gin.Context, d *internal.Deps) {
	secure := d.Config.Host.SSL.Enabled

	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, refreshCookiePath, "", secure, true)
}
