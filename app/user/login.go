package user

import (
	"context"
	"net/http"

	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/internal/auth"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	// Identifier is an email address or a phone number
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginFunc func(ctx context.Context, identifier, password string) (*auth.Session, error)

func login(c *gin.Context, d *internal.Deps, fn loginFunc) {
	requestID := c.GetString("requestID")

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	if data.Identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Identifier field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	s, err := fn(c.Request.Context(), data.Identifier, data.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, d, s)
	c.JSON(http.StatusOK, s)
}

// UserLogin logs in candidates
func UserLogin(c *gin.Context, d *internal.Deps) {
	login(c, d, d.Auth.LoginCandidate)
}

// AdminLogin logs in staff
func AdminLogin(c *gin.Context, d *internal.Deps) {
	login(c, d, d.Auth.LoginAdmin)
}
