// Package store implements the persistence layer: the workspace/catalog/
// feedback entities introspection and the pipeline write through
// `database/sql` against a local SQLite file (`modernc.org/sqlite`, the
// same pure-Go driver `pkg/dbadapter`'s SQLite manager already uses).
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                        Store (facade)                         │
//	├────────────┬────────────┬────────────┬────────────┬──────────┤
//	│ Workspace  │  VectorDb  │   SqlDb    │  Catalog   │ ThothLog │
//	│   Store    │   Store    │   Store    │   Store    │  Store   │
//	└────────────┴────────────┴────────────┴────────────┴──────────┘
//
// # Data Sources
//
//	┌──────────────┬──────────────────────────────────────────────┐
//	│ workspace    │ tenant config + bookkeeping timestamps        │
//	│ vector_db    │ vector-store connection coordinates           │
//	│ sql_db       │ DB connection + per-job status quintuples     │
//	│ sql_table    │ introspected table catalog                    │
//	│ sql_column   │ introspected column catalog                   │
//	│ relationship │ (source_column, target_column) FK edges       │
//	│ thoth_log    │ immutable per-run summaries       │
//	└──────────────┴──────────────────────────────────────────────┘
//
// # Design Patterns
//
// Single-owner invariant: VectorDbStore.AssignToSqlDb unsets any previous
// SqlDb referencing a VectorDb before assigning the new one, inside one
// transaction.
//
// CatalogStore.UpsertColumn/UpsertRelationship lazily create their parent
// SqlTable/SqlColumn rows when introspection visits a foreign-key-owning
// table out of order, so every Relationship endpoint always resolves to an
// existing SqlColumn in the same SqlDb.
//
// Functional options: CatalogStore.ListTables follows the teacher's
// VMStore.List ListOption pattern — each TableOption narrows a
// github.com/Masterminds/squirrel SelectBuilder, composable by the caller.
// ListColumns takes no options.
//
// QueryInterceptor: every repository receives a queryer wrapping
// *sql.DB/*sql.Tx with debug-level zap logging of the statement and
// argument count.
package store
