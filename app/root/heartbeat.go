package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used to check if the server is alive
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
