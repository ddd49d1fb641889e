package user

import (
	"net/http"

	"hrportal/onboarding-api/internal"

	"github.com/gin-gonic/gin"
)

// UserMe returns the logged in user
func UserMe(c *gin.Context, d *internal.Deps) {
	v, err := d.Auth.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}
