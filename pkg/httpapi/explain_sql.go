package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
)

// explainSQLRequest is the POST /explain-sql request body.
type explainSQLRequest struct {
	WorkspaceID    string `json:"workspace_id" binding:"required"`
	Question       string `json:"question" binding:"required"`
	GeneratedSQL   string `json:"generated_sql" binding:"required"`
	DatabaseSchema string `json:"database_schema"`
	Evidence       string `json:"evidence"`
	ChainOfThought string `json:"chain_of_thought"`
	Language       string `json:"language"`
	Username       string `json:"username"`
}

type explainSQLResponse struct {
	Explanation   string  `json:"explanation"`
	ExecutionTime float64 `json:"execution_time"`
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	AgentUsed     string  `json:"agent_used,omitempty"`
}

type explainerVars struct {
	Question   string
	SQL        string
	Schema     string
	Evidence   string
	Directives string
}

// ExplainSQL handles POST /explain-sql: a standalone call to the same
// sql_explainer_agent role the orchestrator's explain_generated_query
// flag drives inline, usable against SQL the caller already
// has (e.g. a previously generated or hand-written query).
func (h *Handler) ExplainSQL(c *gin.Context) {
	var req explainSQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	ctx := c.Request.Context()

	deps, err := h.resourcesFor(ctx, req.WorkspaceID)
	if err != nil {
		c.JSON(http.StatusOK, explainSQLResponse{Success: false, Error: err.Error()})
		return
	}

	explainer := deps.Agents.Get(agent.RoleSQLExplainer)
	if explainer == nil {
		c.JSON(http.StatusOK, explainSQLResponse{Success: false, Error: "no explainer agent configured"})
		return
	}

	vars := explainerVars{
		Question:   req.Question,
		SQL:        req.GeneratedSQL,
		Schema:     req.DatabaseSchema,
		Evidence:   req.Evidence,
		Directives: req.ChainOfThought,
	}
	_, raw, err := explainer.Run(ctx, vars, 0.3, 0)
	if err != nil {
		c.JSON(http.StatusOK, explainSQLResponse{
			Success:   false,
			Error:     err.Error(),
			AgentUsed: string(agent.RoleSQLExplainer),
		})
		return
	}

	c.JSON(http.StatusOK, explainSQLResponse{
		Explanation:   string(raw),
		ExecutionTime: time.Since(start).Seconds(),
		Success:       true,
		AgentUsed:     string(agent.RoleSQLExplainer),
	})
}
