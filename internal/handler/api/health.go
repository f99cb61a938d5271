package api

import (
	"net/http"

	"commerce-server/internal/usecase/warmup"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	state *warmup.State
}

func NewHealthHandler(state *warmup.State) *HealthHandler {
	return &HealthHandler{state: state}
}

// Check always answers 200; warmup_complete tells load balancers whether the
// product cache is primed.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"message":         "Service is healthy",
		"warmup_complete": h.state.Ready(),
	})
}
