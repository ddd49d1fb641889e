package user

import (
	"net/http"

	"hrportal/onboarding-api/internal"

	"github.com/gin-gonic/gin"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// UserRefresh takes the refresh token from the body or the refresh cookie
func UserRefresh(c *gin.Context, d *internal.Deps) {
	var data refreshBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			badBody(c, err)
			return
		}
	}

	if data.RefreshToken == "" {
		data.RefreshToken, _ = c.Cookie(refreshTokenCookie)
	}

	if data.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "No refresh token provided",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	s, err := d.Auth.Refresh(c.Request.Context(), data.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, d, s)
	c.JSON(http.StatusOK, s)
}

func UserLogout(c *gin.Context, d *internal.Deps) {
	if err := d.Auth.Logout(c.Request.Context(), c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}

	clearSessionCookies(c, d)
	c.Status(http.StatusNoContent)
}
