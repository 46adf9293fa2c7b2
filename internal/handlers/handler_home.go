package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// healthCheck godoc
// @Summary Health check
// @Description Reports whether the service is up.
// @Tags system
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
