package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator"
	"github.com/mptyl/thoth-sqlgen/pkg/progress"
	"github.com/mptyl/thoth-sqlgen/pkg/sessioncache"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// ResourceBuilder assembles the full per-workspace Deps bundle an
// orchestrator run needs from the workspace's persisted SqlDb/VectorDb
// rows. A concrete implementation lives in cmd/sqlgenctl, which owns the
// LLM registry and per-workspace agent configuration this package has no
// business constructing.
type ResourceBuilder interface {
	Build(ctx context.Context, ws store.Workspace, sqlDb store.SqlDb, vdb *store.VectorDb) (orchestrator.Deps, error)
}

// Handler holds every service dependency the route handlers need.
type Handler struct {
	Store       *store.Store
	Cache       *sessioncache.Cache
	Progress    progress.Tracker
	DBRegistry  *dbadapter.Registry
	VDBRegistry *vectorstore.Registry
	Builder     ResourceBuilder

	log      *zap.SugaredLogger
	lastRuns sync.Map // workspace_id string -> *orchestrator.SystemState
}

// NewHandler wires a Handler from its service dependencies.
func NewHandler(st *store.Store, cache *sessioncache.Cache, tracker progress.Tracker,
	dbRegistry *dbadapter.Registry, vdbRegistry *vectorstore.Registry, builder ResourceBuilder) *Handler {
	return &Handler{
		Store:       st,
		Cache:       cache,
		Progress:    tracker,
		DBRegistry:  dbRegistry,
		VDBRegistry: vdbRegistry,
		Builder:     builder,
		log:         zap.S().Named("httpapi"),
	}
}

// resolveWorkspace looks up the persisted Workspace and its SqlDb/VectorDb
// rows for a request's workspace_id.
func (h *Handler) resolveWorkspace(ctx context.Context, workspaceID string) (store.Workspace, store.SqlDb, *store.VectorDb, error) {
	id, err := strconv.ParseInt(workspaceID, 10, 64)
	if err != nil {
		return store.Workspace{}, store.SqlDb{}, nil, fmt.Errorf("httpapi: invalid workspace_id %q: %w", workspaceID, err)
	}

	ws, err := h.Store.Workspace().Get(ctx, id)
	if err != nil {
		return store.Workspace{}, store.SqlDb{}, nil, err
	}

	sqlDb, err := h.Store.SqlDb().GetByWorkspace(ctx, id)
	if err != nil {
		return store.Workspace{}, store.SqlDb{}, nil, err
	}

	var vdb *store.VectorDb
	if sqlDb.VectorDbID != nil {
		vdb, err = h.Store.VectorDb().Get(ctx, *sqlDb.VectorDbID)
		if err != nil {
			return store.Workspace{}, store.SqlDb{}, nil, err
		}
	}

	return *ws, *sqlDb, vdb, nil
}

// resourcesFor returns the warmed orchestrator.Deps bundle for a
// workspace, building it through Builder on a cache miss.
func (h *Handler) resourcesFor(ctx context.Context, workspaceID string) (orchestrator.Deps, error) {
	key := sessioncache.Key(workspaceID)

	if cached, ok := h.Cache.Get(key); ok {
		if deps, ok := toDeps(cached); ok {
			return deps, nil
		}
	}

	ws, sqlDb, vdb, err := h.resolveWorkspace(ctx, workspaceID)
	if err != nil {
		return orchestrator.Deps{}, err
	}

	resources, err := h.Cache.Warm(key, func() (sessioncache.Resources, error) {
		deps, err := h.Builder.Build(ctx, ws, sqlDb, vdb)
		if err != nil {
			return sessioncache.Resources{}, err
		}
		return fromDeps(deps), nil
	})
	if err != nil {
		return orchestrator.Deps{}, err
	}

	deps, ok := toDeps(resources)
	if !ok {
		return orchestrator.Deps{}, fmt.Errorf("httpapi: warmed resources for workspace %s have an unexpected shape", workspaceID)
	}
	return deps, nil
}

// recordLastRun stashes a finished run's SystemState for workspaceID,
// backing POST /save-sql-feedback's "last cached SystemState for the
// workspace" lookup. Last writer wins, same as sessioncache.
func (h *Handler) recordLastRun(workspaceID string, state *orchestrator.SystemState) {
	h.lastRuns.Store(workspaceID, state)
}

// lastRunFor returns the most recently recorded SystemState for
// workspaceID, if any.
func (h *Handler) lastRunFor(workspaceID string) (*orchestrator.SystemState, bool) {
	v, ok := h.lastRuns.Load(workspaceID)
	if !ok {
		return nil, false
	}
	state, ok := v.(*orchestrator.SystemState)
	return state, ok
}

// fromDeps/toDeps round-trip an orchestrator.Deps through
// sessioncache.Resources' loosely-typed `any` fields — the cache is
// shared infrastructure that knows nothing about this
// package's concrete Deps shape, so the conversion lives here instead.
func fromDeps(deps orchestrator.Deps) sessioncache.Resources {
	return sessioncache.Resources{
		WorkspaceConfig: deps,
		DBManager:       deps.DBManager,
		VDBManager:      deps.VDBManager,
		AgentPool:       deps.Agents,
		LSHIndexHandle:  deps.LSHIndex,
	}
}

func toDeps(r sessioncache.Resources) (orchestrator.Deps, bool) {
	deps, ok := r.WorkspaceConfig.(orchestrator.Deps)
	return deps, ok
}
