package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health handles GET /health: a liveness probe against the persistence
// layer only, since the workspace-scoped DB/vector-store adapters are
// warmed lazily per request rather than held open process-wide.
func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.DB().PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, healthResponse{Status: "unhealthy", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "healthy", Message: "ok"})
}
