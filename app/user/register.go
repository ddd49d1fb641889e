package user

import (
	"errors"
	"net/http"

	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Email     string `json:"email"`
	Phone     string `json:"phoneNumber"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	// Channel is "email" or "phone"
	Channel string `json:"channel"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		badBody(c, err)
		return
	}

	v, err := d.Auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:     data.Email,
		Phone:     data.Phone,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Channel:   validators.Channel(data.Channel),
	})
	if err != nil && !(v != nil && errors.Is(err, auth.ErrDispatchFailed)) {
		respondError(c, err)
		return
	}

	// The account exists even when the code could not be delivered, the
	// client should offer to resend it
	c.JSON(http.StatusCreated, gin.H{
		"user":     v,
		"codeSent": err == nil,
	})
}
