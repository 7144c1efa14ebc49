package dbadapter

import (
	"sync"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// Registry returns a single Manager instance per (workspace, SqlDb) key,
// safe for concurrent paginated reads across many keyed instances.
type Registry struct {
	mu       sync.Mutex
	managers map[string]Manager
}

func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]Manager)}
}

// Factory returns the cached Manager for (workspaceID, sqlDbID), building
// it from dialect and params on first use.
func (r *Registry) Factory(workspaceID, sqlDbID string, dialect Dialect, params ConnectionParams) (Manager, error) {
	key := workspaceID + "|" + sqlDbID

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[key]; ok {
		return m, nil
	}

	m, err := build(dialect, params)
	if err != nil {
		return nil, err
	}
	r.managers[key] = m
	return m, nil
}

// Invalidate closes and evicts the cached manager for a key — used when a
// workspace's SqlDb is removed.
func (r *Registry) Invalidate(workspaceID, sqlDbID string) error {
	key := workspaceID + "|" + sqlDbID

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[key]
	if !ok {
		return nil
	}
	delete(r.managers, key)
	return m.Close()
}

func build(dialect Dialect, params ConnectionParams) (Manager, error) {
	switch dialect {
	case DialectPostgreSQL:
		return newPostgresManager(params)
	case DialectMySQL:
		return newMySQLManager(params, DialectMySQL)
	case DialectMariaDB:
		return newMySQLManager(params, DialectMariaDB)
	case DialectSQLite:
		return newSQLiteManager(params)
	case DialectSQLServer:
		return newSQLServerManager(params)
	case DialectOracle:
		return newOracleManager(params)
	default:
		return nil, srvErrors.NewDialectUnsupportedError(string(dialect))
	}
}
