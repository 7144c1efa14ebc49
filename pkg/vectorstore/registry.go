package vectorstore

import (
	"context"
	"sync"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// Factory builds the concrete Store for a BackendType. Qdrant, Chroma and
// Milvus are named in this module's closed set of backends but have no Go
// client grounded in the retrieval pack (DESIGN.md); calling Factory for
// one of them returns a CONFIGURATION error for an unconfigured backend,
// rather than silently degrading or panicking.
type Factory func(ctx context.Context, params ConnectionParams) (Store, error)

// Registry caches a single Store instance per (workspace, collection) key,
// the same "one instance per key" shape as pkg/dbadapter.Registry.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]Store
	factories map[BackendType]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]Store),
		factories: map[BackendType]Factory{
			BackendQdrant:   unconfiguredFactory(BackendQdrant),
			BackendChroma:   unconfiguredFactory(BackendChroma),
			BackendMilvus:   unconfiguredFactory(BackendMilvus),
		},
	}
}

func unconfiguredFactory(backend BackendType) Factory {
	return func(ctx context.Context, params ConnectionParams) (Store, error) {
		return nil, srvErrors.NewVectorDBNotConfiguredError(string(backend))
	}
}

// RegisterFactory wires a concrete backend constructor (sqlitevec.Open,
// pgvector.Open) under a BackendType tag; callers register these at
// startup so this package stays free of an import cycle on the backend
// subpackages.
func (r *Registry) RegisterFactory(backend BackendType, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[backend] = f
}

// Get returns the cached Store for key, building it via the backend's
// factory on first use.
func (r *Registry) Get(ctx context.Context, key string, backend BackendType, params ConnectionParams) (Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[key]; ok {
		return s, nil
	}

	factory, ok := r.factories[backend]
	if !ok {
		return nil, srvErrors.NewVectorDBNotConfiguredError(string(backend))
	}

	s, err := factory(ctx, params)
	if err != nil {
		return nil, err
	}
	r.stores[key] = s
	return s, nil
}

func (r *Registry) Invalidate(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[key]
	if !ok {
		return nil
	}
	delete(r.stores, key)
	return s.Close()
}
