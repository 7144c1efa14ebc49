package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBeforeInitIsNotFound(t *testing.T) {
	tr := NewMemoryTracker()
	_, err := tr.Get(Key{WorkspaceID: 1, JobType: "table_comment"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitThenUpdateAdvancesProgress(t *testing.T) {
	tr := NewMemoryTracker()
	key := Key{WorkspaceID: 1, JobType: "table_comment"}

	require.NoError(t, tr.Init(key, 10))
	row, err := tr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, row.Status)
	assert.Equal(t, 0, row.Progress)

	require.NoError(t, tr.Update(key, 5, 0, "halfway"))
	row, _ = tr.Get(key)
	assert.Equal(t, 50, row.Progress)
	assert.Equal(t, "halfway", row.Message)
}

func TestUpdateReachesTerminalCompletedStatus(t *testing.T) {
	tr := NewMemoryTracker()
	key := Key{WorkspaceID: 2, JobType: "column_comment"}

	require.NoError(t, tr.Init(key, 4))
	require.NoError(t, tr.Update(key, 4, 0, "done"))

	row, err := tr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, row.Status)
	assert.Equal(t, 100, row.Progress)
}

func TestUpdateReachesTerminalFailedStatusWhenAnyFailed(t *testing.T) {
	tr := NewMemoryTracker()
	key := Key{WorkspaceID: 3, JobType: "db_elements"}

	require.NoError(t, tr.Init(key, 4))
	require.NoError(t, tr.Update(key, 3, 1, "1 table failed"))

	row, err := tr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, row.Status)
	assert.Equal(t, "1 table failed", row.Error)
}

func TestProgressNeverDecreases(t *testing.T) {
	tr := NewMemoryTracker()
	key := Key{WorkspaceID: 4, JobType: "table_comment"}

	require.NoError(t, tr.Init(key, 10))
	require.NoError(t, tr.Update(key, 8, 0, "almost there"))
	row, _ := tr.Get(key)
	assert.Equal(t, 80, row.Progress)

	require.NoError(t, tr.Update(key, 2, 0, "stale retry"))
	row, _ = tr.Get(key)
	assert.Equal(t, 80, row.Progress)
}

func TestUpdateUnknownKeyIsNotFound(t *testing.T) {
	tr := NewMemoryTracker()
	err := tr.Update(Key{WorkspaceID: 99, JobType: "x"}, 1, 0, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearRemovesRow(t *testing.T) {
	tr := NewMemoryTracker()
	key := Key{WorkspaceID: 5, JobType: "table_comment"}
	require.NoError(t, tr.Init(key, 1))
	require.NoError(t, tr.Clear(key))

	_, err := tr.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}
