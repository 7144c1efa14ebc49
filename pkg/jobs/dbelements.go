package jobs

import (
	"context"

	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
)

// CatalogEntities is what CreateDBElements upserts, grouped the way
// pkg/store's SqlTable/SqlColumn/Relationship repositories expect them.
type CatalogEntities struct {
	Tables        []dbadapter.TableInfo
	Columns       []dbadapter.ColumnInfo
	Relationships []dbadapter.ForeignKey
}

// CatalogUpserter persists introspected entities; pkg/store's repository
// façade implements this for a concrete SqlDb.
type CatalogUpserter interface {
	UpsertTable(ctx context.Context, table dbadapter.TableInfo) error
	UpsertColumn(ctx context.Context, column dbadapter.ColumnInfo) error
	UpsertRelationship(ctx context.Context, fk dbadapter.ForeignKey) error
}

// CreateDBElements introspects tables, columns and foreign keys through
// mgr and upserts them through store, reporting progress to r. For a
// foreign key whose owning table wasn't part of the initial table list,
// its columns are introspected and upserted first so the relationship's
// endpoints always resolve to an existing SqlColumn.
func CreateDBElements(ctx context.Context, mgr dbadapter.Manager, store CatalogUpserter, r Reporter) (CatalogEntities, error) {
	if r == nil {
		r = NoopReporter
	}
	log := zap.S().Named("jobs.db_elements")

	tables, err := mgr.IntrospectTables(ctx)
	if err != nil {
		return CatalogEntities{}, err
	}

	knownTables := make(map[string]bool, len(tables))
	entities := CatalogEntities{Tables: tables}

	total := len(tables)
	processed, failed := 0, 0
	r.Update(0, 0, total)

	for _, t := range tables {
		knownTables[t.Name] = true
		if err := store.UpsertTable(ctx, t); err != nil {
			log.Errorw("failed to upsert table", "table", t.Name, "error", err)
			failed++
			r.Update(processed, failed, total)
			continue
		}

		columns, err := mgr.IntrospectColumns(ctx, t.Name)
		if err != nil {
			log.Errorw("failed to introspect columns", "table", t.Name, "error", err)
			failed++
			r.Update(processed, failed, total)
			continue
		}
		if err := upsertColumns(ctx, store, log, columns, &entities); err != nil {
			failed++
			r.Update(processed, failed, total)
			continue
		}

		processed++
		r.Update(processed, failed, total)
	}

	fks, err := mgr.IntrospectForeignKeys(ctx)
	if err != nil {
		return entities, err
	}

	introspectedOwners := make(map[string]bool)
	for _, fk := range fks {
		for _, owner := range []string{fk.SourceTable, fk.TargetTable} {
			if knownTables[owner] || introspectedOwners[owner] {
				continue
			}
			introspectedOwners[owner] = true
			columns, err := mgr.IntrospectColumns(ctx, owner)
			if err != nil {
				log.Errorw("failed to re-introspect FK-owning table", "table", owner, "error", err)
				continue
			}
			_ = upsertColumns(ctx, store, log, columns, &entities)
		}

		if err := store.UpsertRelationship(ctx, fk); err != nil {
			log.Errorw("failed to upsert relationship", "fk", fk, "error", err)
			continue
		}
		entities.Relationships = append(entities.Relationships, fk)
	}

	return entities, nil
}

func upsertColumns(ctx context.Context, store CatalogUpserter, log *zap.SugaredLogger, columns []dbadapter.ColumnInfo, entities *CatalogEntities) error {
	var firstErr error
	for _, c := range columns {
		if err := store.UpsertColumn(ctx, c); err != nil {
			log.Errorw("failed to upsert column", "table", c.Table, "column", c.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		entities.Columns = append(entities.Columns, c)
	}
	return firstErr
}
