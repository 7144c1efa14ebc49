package httpapi_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/httpapi"
	"github.com/mptyl/thoth-sqlgen/pkg/progress"
	"github.com/mptyl/thoth-sqlgen/pkg/sessioncache"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

func newTestHandler(t *testing.T) *httpapi.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStore(db)
	require.NoError(t, st.Migrate(context.Background()))

	return httpapi.NewHandler(st, sessioncache.New(), progress.NewMemoryTracker(),
		dbadapter.NewRegistry(), vectorstore.NewRegistry(), nil)
}

func TestHealthReturnsHealthyWhenStoreIsReachable(t *testing.T) {
	h := newTestHandler(t)

	router := gin.New()
	router.GET("/health", h.Health)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"ok"}`, rec.Body.String())
}
