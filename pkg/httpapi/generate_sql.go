package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
)

// generateSQLRequest is the POST /generate-sql request body.
type generateSQLRequest struct {
	Question           string `json:"question" binding:"required"`
	WorkspaceID        string `json:"workspace_id" binding:"required"`
	FunctionalityLevel string `json:"functionality_level"`
	Username           string `json:"username"`
	Flags              struct {
		ExplainGeneratedQuery bool `json:"explain_generated_query"`
	} `json:"flags"`
}

func (r generateSQLRequest) level() level.Level {
	switch r.FunctionalityLevel {
	case string(level.Advanced):
		return level.Advanced
	case string(level.Expert):
		return level.Expert
	default:
		return level.Basic
	}
}

// GenerateSQL handles POST /generate-sql: it never ends with an HTTP
// error status on pipeline failure — orchestrator failures
// are reported in-band as a CRITICAL_ERROR frame within the stream.
func (h *Handler) GenerateSQL(c *gin.Context) {
	var req generateSQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deps, err := h.resourcesFor(c.Request.Context(), req.WorkspaceID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ws, sqlDb, _, err := h.resolveWorkspace(c.Request.Context(), req.WorkspaceID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	deps.StateSink = func(state *orchestrator.SystemState) {
		h.recordLastRun(req.WorkspaceID, state)
	}

	runReq := orchestrator.Request{
		RequestID:          c.GetHeader("X-Request-ID"),
		Question:           req.Question,
		WorkspaceID:        req.WorkspaceID,
		DBName:             sqlDb.Name,
		Dialect:            sqlDb.Dialect,
		FunctionalityLevel: req.level(),
		Flags:              orchestrator.Flags{ExplainGeneratedQuery: req.Flags.ExplainGeneratedQuery},
		Username:           req.Username,
		WorkspaceLanguage:  ws.Language,
	}

	frames := orchestrator.Run(c.Request.Context(), deps, runReq)

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Stream(func(w io.Writer) bool {
		frame, ok := <-frames
		if !ok {
			return false
		}
		_, writeErr := io.WriteString(w, frame.Line())
		return writeErr == nil
	})
}
