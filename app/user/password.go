package user

import (
	"net/http"

	"hrportal/onboarding-api/internal"

	"github.com/gin-gonic/gin"
)

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetPasswordBody struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

func UserChangePassword(c *gin.Context, d *internal.Deps) {
	var data changePasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	err := d.Auth.ChangePassword(c.Request.Context(), c.GetString("userID"), data.CurrentPassword, data.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UserForgotPassword sends a reset code through the channel of the identifier
func UserForgotPassword(c *gin.Context, d *internal.Deps) {
	var data identifierBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	if err := d.Auth.ForgotPassword(c.Request.Context(), data.Identifier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reset code sent",
	})
}

func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	if err := d.Auth.ResetPassword(c.Request.Context(), data.Code, data.Password); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
