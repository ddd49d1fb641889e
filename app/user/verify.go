package user

import (
	"net/http"

	"hrportal/onboarding-api/internal"

	"github.com/gin-gonic/gin"
)

type codeBody struct {
	Code string `json:"code"`
}

type identifierBody struct {
	Identifier string `json:"identifier"`
}

// UserVerify verifies the account the code was sent to and logs it in
func UserVerify(c *gin.Context, d *internal.Deps) {
	var data codeBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	s, err := d.Auth.Verify(c.Request.Context(), data.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, d, s)
	c.JSON(http.StatusOK, s)
}

// UserRequestVerification sends a new verification code
func UserRequestVerification(c *gin.Context, d *internal.Deps) {
	var data identifierBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	if err := d.Auth.RequestVerification(c.Request.Context(), data.Identifier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Verification code sent",
	})
}
