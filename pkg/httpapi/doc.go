// Package httpapi implements the Text-to-SQL generation service's HTTP
// surface, built on gin-gonic/gin around a Handler struct that holds
// every service dependency the route handlers need.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                          HTTP Server                          │
//	├───────────────────────────────────────────────────────────────┤
//	│  Middleware: ginzap.Ginzap (request logging), ginzap.Recovery │
//	├───────────────────────────────────────────────────────────────┤
//	│  Router (/api/v1)                                             │
//	│    POST /generate-sql      → streamed text/plain frames       │
//	│    POST /execute-query     → JSON PaginatedResult             │
//	│    POST /explain-sql       → JSON explanation                 │
//	│    POST /save-sql-feedback → persist SqlDocument               │
//	│    GET  /health            → JSON health status               │
//	└───────────────────────────────────────────────────────────────┘
//
// # Resource Resolution
//
// Each request carries only a workspace_id. The Handler
// resolves it to the workspace's persisted SqlDb/VectorDb rows
// (pkg/store), then asks pkg/sessioncache for the warmed Deps bundle the
// orchestrator needs, building it via the injected ResourceBuilder on a
// cache miss. ResourceBuilder is intentionally left to the caller
// (cmd/sqlgenctl): assembling an agent.Pool from per-workspace
// configuration is deployment-specific wiring, not wire-protocol
// concern, so this package stays focused on HTTP framing and store
// lookups.
package httpapi
