package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/jobs"
	"github.com/mptyl/thoth-sqlgen/pkg/progress"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
)

var importWorkspaceID int64

var importSchemaCmd = &cobra.Command{
	Use:   "import-schema",
	Short: "Introspect a workspace's configured SqlDb and populate its catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importWorkspaceID == 0 {
			return fmt.Errorf("--workspace is required")
		}

		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		sqlDb, err := st.SqlDb().GetByWorkspace(cmd.Context(), importWorkspaceID)
		if err != nil {
			return fmt.Errorf("resolve workspace %d's SqlDb: %w", importWorkspaceID, err)
		}

		registry := dbadapter.NewRegistry()
		mgr, err := registry.Factory(fmt.Sprint(importWorkspaceID), fmt.Sprint(sqlDb.ID), dbadapter.Dialect(sqlDb.Dialect), dbadapter.ConnectionParams{
			Host:     sqlDb.Host,
			Port:     sqlDb.Port,
			Database: sqlDb.DatabaseName,
			User:     sqlDb.User,
			Schema:   sqlDb.Schema,
			DBRoot:   cfg.Database.RootPath,
			Mode:     "prod",
			Name:     sqlDb.Name,
		})
		if err != nil {
			return fmt.Errorf("build db manager: %w", err)
		}
		defer mgr.Close()

		tracker := progress.NewMemoryTracker()
		key := progress.Key{WorkspaceID: importWorkspaceID, JobType: "db_elements"}
		reporter := &trackerReporter{tracker: tracker, key: key}

		entities, err := jobs.CreateDBElements(cmd.Context(), mgr, st.Catalog(sqlDb.ID), reporter)
		if err != nil {
			return fmt.Errorf("create db elements: %w", err)
		}

		zap.S().Infow("schema imported",
			"workspace_id", importWorkspaceID,
			"tables", len(entities.Tables),
			"columns", len(entities.Columns),
			"relationships", len(entities.Relationships),
		)
		return nil
	},
}

// trackerReporter adapts pkg/progress.Tracker to pkg/jobs.Reporter, the
// same kind of seam pkg/httpapi.ResourceBuilder is for orchestrator.Deps:
// jobs stays free of a concrete progress backend import.
type trackerReporter struct {
	tracker progress.Tracker
	key     progress.Key
	inited  bool
}

func (r *trackerReporter) Update(processed, failed, total int) {
	if !r.inited {
		_ = r.tracker.Init(r.key, total)
		r.inited = true
	}
	_ = r.tracker.Update(r.key, processed, failed, "")
}

func init() {
	importSchemaCmd.Flags().Int64Var(&importWorkspaceID, "workspace", 0, "Workspace ID to introspect (required)")
}
