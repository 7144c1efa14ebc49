package main

import (
	"context"
	"fmt"

	"github.com/mptyl/thoth-sqlgen/internal/config"
	"github.com/mptyl/thoth-sqlgen/internal/prompts"
	"github.com/mptyl/thoth-sqlgen/pkg/agent"
	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/llm"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/lsh"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// embeddingDim is the feature-hashed vector width every vector-store
// backend is opened with (internal/embedding.Provider).
const embeddingDim = 64

// serviceResourceBuilder is the concrete httpapi.ResourceBuilder wired at
// process startup: it owns the pieces pkg/httpapi deliberately doesn't —
// the LLM registry, the agent pool's prompt templates, and the DB/vector-
// store registries.
type serviceResourceBuilder struct {
	cfg         *config.Config
	store       *store.Store
	dbRegistry  *dbadapter.Registry
	vdbRegistry *vectorstore.Registry
}

func newResourceBuilder(cfg *config.Config, st *store.Store, dbRegistry *dbadapter.Registry, vdbRegistry *vectorstore.Registry) *serviceResourceBuilder {
	return &serviceResourceBuilder{cfg: cfg, store: st, dbRegistry: dbRegistry, vdbRegistry: vdbRegistry}
}

// Build implements pkg/httpapi.ResourceBuilder.
func (b *serviceResourceBuilder) Build(ctx context.Context, ws store.Workspace, sqlDb store.SqlDb, vdb *store.VectorDb) (orchestrator.Deps, error) {
	pool, err := b.buildAgentPool()
	if err != nil {
		return orchestrator.Deps{}, err
	}

	dbManager, err := b.dbRegistry.Factory(fmt.Sprint(ws.ID), fmt.Sprint(sqlDb.ID), dbadapter.Dialect(sqlDb.Dialect), dbadapter.ConnectionParams{
		Host:     sqlDb.Host,
		Port:     sqlDb.Port,
		Database: sqlDb.DatabaseName,
		User:     sqlDb.User,
		Schema:   sqlDb.Schema,
		DBRoot:   b.cfg.Database.RootPath,
		Mode:     "prod",
		Name:     sqlDb.Name,
	})
	if err != nil {
		return orchestrator.Deps{}, err
	}

	var vdbManager vectorstore.Store
	if vdb != nil {
		vdbManager, err = b.vdbManagerFor(ctx, ws, *vdb)
		if err != nil {
			return orchestrator.Deps{}, err
		}
	}

	lshIndex, err := b.buildLSHIndex(ctx, sqlDb.ID)
	if err != nil {
		return orchestrator.Deps{}, err
	}

	return orchestrator.Deps{
		Agents:           pool,
		DBManager:        dbManager,
		VDBManager:       vdbManager,
		LSHIndex:         lshIndex,
		ThothLog:         b.store.ThothLog(),
		MaxParallelSQLs:  b.cfg.Concurrency.MaxParallelSQLs,
		MaxParallelTests: b.cfg.Concurrency.MaxParallelTests,
	}, nil
}

func llmClientFor(m config.Model) (llm.Client, error) {
	return llm.NewClient(m.ToModelSpec())
}

// buildAgentPool binds one llm.Client (from the workspace's default model
// slot) to every agent.Role with a built-in prompt. A per-workspace model
// override table is a natural follow-up once Workspace grows model-slot
// fields of its own.
func (b *serviceResourceBuilder) buildAgentPool() (*agent.Pool, error) {
	client, err := llmClientFor(b.cfg.Models.Default)
	if err != nil {
		return nil, err
	}

	pool := agent.NewPool()
	for _, role := range []agent.Role{
		agent.RoleQuestionValidator, agent.RoleQuestionTranslator, agent.RoleKeywordExtraction,
		agent.RoleSQLBasic, agent.RoleSQLAdvanced, agent.RoleSQLExpert,
		agent.RoleTestGen1, agent.RoleTestGen2, agent.RoleTestReducer, agent.RoleTestEvaluator,
		agent.RoleSQLExplainer, agent.RoleAskHuman,
	} {
		text := prompts.Default(role)
		if text == "" {
			continue
		}
		a, err := agent.New(role, client, text, nil)
		if err != nil {
			return nil, fmt.Errorf("cmd/sqlgenctl: build agent %s: %w", role, err)
		}
		pool.Set(a)
	}
	return pool, nil
}

func (b *serviceResourceBuilder) vdbManagerFor(ctx context.Context, ws store.Workspace, vdb store.VectorDb) (vectorstore.Store, error) {
	key := fmt.Sprintf("%d|%d", ws.ID, vdb.ID)
	return b.vdbRegistry.Get(ctx, key, vdb.Backend, vectorstore.ConnectionParams{
		Host:           vdb.Host,
		Port:           vdb.Port,
		APIKey:         vdb.APIKey,
		Tenant:         vdb.Tenant,
		CollectionName: vdb.CollectionName,
		FilePath:       fmt.Sprintf("%s/%s.vec.sqlite", b.cfg.Database.RootPath, vdb.CollectionName),
		DSN:            b.cfg.VectorStore.DSN,
	})
}

// buildLSHIndex seeds a fresh schema.lsh.Index from the catalog's stored
// column value descriptions, so Phase 3's fuzzy value lookups
// have something to match against even before a dedicated value-sampling
// job runs.
func (b *serviceResourceBuilder) buildLSHIndex(ctx context.Context, sqlDbID int64) (*lsh.Index, error) {
	idx := lsh.NewIndex()
	catalog := b.store.Catalog(sqlDbID)

	tables, err := catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		columns, err := catalog.ListColumns(ctx, table.ID)
		if err != nil {
			return nil, err
		}
		for _, col := range columns {
			if col.ValueDescription != "" {
				idx.Add(table.Name, col.NormalizedName, col.ValueDescription)
			}
		}
	}
	return idx, nil
}
