package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/internal/embedding"
	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/httpapi"
	"github.com/mptyl/thoth-sqlgen/pkg/progress"
	"github.com/mptyl/thoth-sqlgen/pkg/sessioncache"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore/pgvector"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore/sqlitevec"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		dbRegistry := dbadapter.NewRegistry()
		vdbRegistry := newVectorStoreRegistry(cfg.Database.RootPath)

		builder := newResourceBuilder(cfg, st, dbRegistry, vdbRegistry)
		handler := httpapi.NewHandler(st, sessioncache.New(), progress.NewMemoryTracker(), dbRegistry, vdbRegistry, builder)

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		server := httpapi.NewServer(addr, handler)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			zap.S().Infow("starting http server", "addr", addr)
			errCh <- server.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			zap.S().Info("shutdown signal received")
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	},
}

// newVectorStoreRegistry registers the two concrete vectorstore backends
// this module ships a Go client for (sqlite-vec local files, pgvector
// over a Postgres pool); Qdrant/Chroma/Milvus stay on the registry's
// built-in unconfigured factory (pkg/vectorstore.NewRegistry).
func newVectorStoreRegistry(dbRoot string) *vectorstore.Registry {
	reg := vectorstore.NewRegistry()
	embedder := embedding.New(64)

	reg.RegisterFactory(vectorstore.BackendSQLiteVec, func(ctx context.Context, params vectorstore.ConnectionParams) (vectorstore.Store, error) {
		path := params.FilePath
		if path == "" {
			path = fmt.Sprintf("%s/%s.vec.sqlite", dbRoot, params.CollectionName)
		}
		return sqlitevec.Open(path, embedder, params.CollectionName, 64)
	})
	reg.RegisterFactory(vectorstore.BackendPGVector, func(ctx context.Context, params vectorstore.ConnectionParams) (vectorstore.Store, error) {
		return pgvector.Open(ctx, params.DSN, embedder, params.CollectionName, 64)
	})
	return reg
}
