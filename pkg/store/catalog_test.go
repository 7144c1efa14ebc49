package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
)

func newCatalogFixture(t *testing.T) (*store.Store, int64) {
	t.Helper()
	s := newTestStore(t)
	ctx := context.Background()

	wsID, err := s.Workspace().Create(ctx, store.Workspace{Name: "w1", DBName: "db1", Language: "en"})
	require.NoError(t, err)
	dbID, err := s.SqlDb().Create(ctx, store.SqlDb{WorkspaceID: wsID, Name: "main", Dialect: "sqlite"})
	require.NoError(t, err)
	return s, dbID
}

func TestCatalogUpsertTableThenColumnsRoundTrip(t *testing.T) {
	s, dbID := newCatalogFixture(t)
	ctx := context.Background()
	catalog := s.Catalog(dbID)

	require.NoError(t, catalog.UpsertTable(ctx, dbadapter.TableInfo{Name: "schools"}))
	require.NoError(t, catalog.UpsertColumn(ctx, dbadapter.ColumnInfo{
		Table: "schools", Name: "id", DataType: "INTEGER", IsPrimary: true,
	}))
	require.NoError(t, catalog.UpsertColumn(ctx, dbadapter.ColumnInfo{
		Table: "schools", Name: "county", DataType: "TEXT",
	}))

	tables, err := catalog.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "schools", tables[0].Name)

	columns, err := catalog.ListColumns(ctx, tables[0].ID)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "county", columns[0].OriginalName)
	assert.True(t, columns[1].IsPrimaryKey)
}

func TestCatalogUpsertColumnLazilyCreatesOwningTable(t *testing.T) {
	s, dbID := newCatalogFixture(t)
	ctx := context.Background()
	catalog := s.Catalog(dbID)

	// no preceding UpsertTable call for "satscores" — mirrors
	// pkg/jobs.CreateDBElements visiting an FK-owning table that wasn't
	// part of the initial table list
	require.NoError(t, catalog.UpsertColumn(ctx, dbadapter.ColumnInfo{
		Table: "satscores", Name: "cds", DataType: "TEXT",
	}))

	tables, err := catalog.ListTables(ctx, store.ByTableName("satscores"))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	columns, err := catalog.ListColumns(ctx, tables[0].ID)
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Equal(t, "cds", columns[0].OriginalName)
}

func TestCatalogUpsertRelationshipLazilyCreatesEndpointColumns(t *testing.T) {
	s, dbID := newCatalogFixture(t)
	ctx := context.Background()
	catalog := s.Catalog(dbID)

	require.NoError(t, catalog.UpsertTable(ctx, dbadapter.TableInfo{Name: "schools"}))
	require.NoError(t, catalog.UpsertColumn(ctx, dbadapter.ColumnInfo{
		Table: "schools", Name: "cds", DataType: "TEXT",
	}))

	err := catalog.UpsertRelationship(ctx, dbadapter.ForeignKey{
		SourceTable: "satscores", SourceColumn: "cds",
		TargetTable: "schools", TargetColumn: "cds",
	})
	require.NoError(t, err)

	tables, err := catalog.ListTables(ctx, store.ByTableName("satscores"))
	require.NoError(t, err)
	require.Len(t, tables, 1, "relationship upsert should have lazily created the satscores table")
}

func TestListTablesWithLimit(t *testing.T) {
	s, dbID := newCatalogFixture(t)
	ctx := context.Background()
	catalog := s.Catalog(dbID)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, catalog.UpsertTable(ctx, dbadapter.TableInfo{Name: name}))
	}

	tables, err := catalog.ListTables(ctx, store.WithTableLimit(2))
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}
