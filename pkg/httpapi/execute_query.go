package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
)

// executeQueryRequest is the POST /execute-query request body.
type executeQueryRequest struct {
	WorkspaceID string                 `json:"workspace_id" binding:"required"`
	SQL         string                 `json:"sql" binding:"required"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"page_size"`
	SortModel   *dbadapter.SortModel   `json:"sort_model"`
	FilterModel *dbadapter.FilterModel `json:"filter_model"`
}

type executeQueryResponse struct {
	Data        []map[string]any `json:"data"`
	TotalRows   int              `json:"total_rows"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	HasNext     bool             `json:"has_next"`
	HasPrevious bool             `json:"has_previous"`
	Columns     []string         `json:"columns"`
	Error       string           `json:"error,omitempty"`
}

// ExecuteQuery handles POST /execute-query: a paginated read against the
// workspace's configured SqlDb.
func (h *Handler) ExecuteQuery(c *gin.Context) {
	var req executeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}

	ctx := c.Request.Context()
	_, sqlDb, _, err := h.resolveWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	mgr, err := h.DBRegistry.Factory(req.WorkspaceID, sqlDb.Name, dbadapter.Dialect(sqlDb.Dialect), dbadapter.ConnectionParams{
		Host:     sqlDb.Host,
		Port:     sqlDb.Port,
		Database: sqlDb.DatabaseName,
		User:     sqlDb.User,
		Schema:   sqlDb.Schema,
		Name:     sqlDb.Name,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	result, err := mgr.ExecutePaginated(ctx, req.SQL, req.Page, req.PageSize, req.SortModel, req.FilterModel)
	if err != nil {
		c.JSON(http.StatusOK, executeQueryResponse{Page: req.Page, PageSize: req.PageSize, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, executeQueryResponse{
		Data:        result.Rows,
		TotalRows:   result.Total,
		Page:        req.Page,
		PageSize:    req.PageSize,
		HasNext:     req.Page*req.PageSize < result.Total,
		HasPrevious: req.Page > 1,
		Columns:     result.Columns,
		Error:       result.Error,
	})
}
