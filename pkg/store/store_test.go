package store_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestWorkspaceGetReturnsConfigurationNotFoundWhenMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Workspace().Get(ctx, 1)

	require.Error(t, err)
	var svcErr *srvErrors.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, srvErrors.CategoryConfiguration, svcErr.Category)
}

func TestWorkspaceCreateAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Workspace().Create(ctx, store.Workspace{Name: "alameda", DBName: "schools", Language: "en"})
	require.NoError(t, err)

	got, err := s.Workspace().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alameda", got.Name)
	assert.Equal(t, "schools", got.DBName)
	assert.Nil(t, got.LastEvidenceLoad)
}

func TestWorkspaceSetLastEvidenceLoadStampsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Workspace().Create(ctx, store.Workspace{Name: "w1", DBName: "db1", Language: "en"})
	require.NoError(t, err)

	require.NoError(t, s.Workspace().SetLastEvidenceLoad(ctx, id))

	got, err := s.Workspace().Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.LastEvidenceLoad)
}

func TestSqlDbSetAndGetJobStatusRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wsID, err := s.Workspace().Create(ctx, store.Workspace{Name: "w1", DBName: "db1", Language: "en"})
	require.NoError(t, err)
	dbID, err := s.SqlDb().Create(ctx, store.SqlDb{WorkspaceID: wsID, Name: "main", Dialect: "sqlite"})
	require.NoError(t, err)

	err = s.SqlDb().SetJobStatus(ctx, dbID, store.JobDBElements, store.JobStatusQuintuple{
		Status: store.JobRunning, TaskID: "task-1", Log: "started",
	})
	require.NoError(t, err)

	got, err := s.SqlDb().GetJobStatus(ctx, dbID, store.JobDBElements)
	require.NoError(t, err)
	assert.Equal(t, store.JobRunning, got.Status)
	assert.Equal(t, "task-1", got.TaskID)

	// the other two job types remain untouched at their IDLE default
	tableStatus, err := s.SqlDb().GetJobStatus(ctx, dbID, store.JobTableComment)
	require.NoError(t, err)
	assert.Equal(t, store.JobIdle, tableStatus.Status)
}

func TestVectorDbAssignToSqlDbUnsetsPreviousOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wsID, err := s.Workspace().Create(ctx, store.Workspace{Name: "w1", DBName: "db1", Language: "en"})
	require.NoError(t, err)
	vdbID, err := s.VectorDb().Create(ctx, store.VectorDb{Backend: "sqlitevec", CollectionName: "c1"})
	require.NoError(t, err)
	db1ID, err := s.SqlDb().Create(ctx, store.SqlDb{WorkspaceID: wsID, Name: "db1", Dialect: "sqlite"})
	require.NoError(t, err)
	db2ID, err := s.SqlDb().Create(ctx, store.SqlDb{WorkspaceID: wsID, Name: "db2", Dialect: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, s.VectorDb().AssignToSqlDb(ctx, vdbID, db1ID))

	first, err := s.SqlDb().Get(ctx, db1ID)
	require.NoError(t, err)
	require.NotNil(t, first.VectorDbID)
	assert.Equal(t, vdbID, *first.VectorDbID)

	require.NoError(t, s.VectorDb().AssignToSqlDb(ctx, vdbID, db2ID))

	first, err = s.SqlDb().Get(ctx, db1ID)
	require.NoError(t, err)
	assert.Nil(t, first.VectorDbID)

	second, err := s.SqlDb().Get(ctx, db2ID)
	require.NoError(t, err)
	require.NotNil(t, second.VectorDbID)
	assert.Equal(t, vdbID, *second.VectorDbID)
}
