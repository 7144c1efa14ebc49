package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// saveSQLFeedbackRequest is the POST /save-sql-feedback request body.
type saveSQLFeedbackRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
}

type saveSQLFeedbackResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SaveSQLFeedback handles POST /save-sql-feedback: it reads the last
// cached SystemState for the workspace and persists it as a gold
// SqlDocument into the vector store, so a user-approved query
// resurfaces as a similar-query example on future runs.
func (h *Handler) SaveSQLFeedback(c *gin.Context) {
	var req saveSQLFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, ok := h.lastRunFor(req.WorkspaceID)
	if !ok || state.LastSQL == "" {
		c.JSON(http.StatusOK, saveSQLFeedbackResponse{Success: false, Error: "no cached run for workspace"})
		return
	}

	ctx := c.Request.Context()
	_, _, vdb, err := h.resolveWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if vdb == nil {
		c.JSON(http.StatusOK, saveSQLFeedbackResponse{Success: false, Error: "workspace has no configured vector store"})
		return
	}

	vstore, err := h.VDBRegistry.Get(ctx, req.WorkspaceID, vdb.Backend, vectorstore.ConnectionParams{
		Host:           vdb.Host,
		Port:           vdb.Port,
		APIKey:         vdb.APIKey,
		Tenant:         vdb.Tenant,
		CollectionName: vdb.CollectionName,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	docID, err := vstore.AddSQL(ctx, vectorstore.SqlDocument{
		Question: state.OriginalQuestion,
		SQL:      state.LastSQL,
		Evidence: strings.Join(state.Evidence, "\n"),
	})
	if err != nil {
		c.JSON(http.StatusOK, saveSQLFeedbackResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, saveSQLFeedbackResponse{Success: true, DocumentID: docID})
}
