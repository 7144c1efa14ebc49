package httpapi

import "github.com/gin-gonic/gin"

// RegisterRoutes wires every endpoint this service exposes onto group.
func RegisterRoutes(group *gin.RouterGroup, h *Handler) {
	group.POST("/generate-sql", h.GenerateSQL)
	group.POST("/execute-query", h.ExecuteQuery)
	group.POST("/explain-sql", h.ExplainSQL)
	group.POST("/save-sql-feedback", h.SaveSQLFeedback)
	group.GET("/health", h.Health)
}
