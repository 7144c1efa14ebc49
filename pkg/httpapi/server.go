package httpapi

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	zaplog "go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestID assigns every request a stable id, generating one when the
// caller didn't supply X-Request-ID, so every orchestrator.Request and
// its ThothLog/SystemState trail can always be correlated back to one
// HTTP call.
func requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
		c.Request.Header.Set(requestIDHeader, id)
	}
	c.Header(requestIDHeader, id)
	c.Next()
}

// Server wraps the gin engine and the underlying http.Server: Logger +
// Recovery middleware, a versioned route group, graceful Stop.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// NewServer builds a Server listening on addr, registering every route
// under /api/v1 against h.
func NewServer(addr string, h *Handler) *Server {
	engine := gin.New()
	logger := zaplog.L().Named("http")
	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(requestID)

	group := engine.Group("/api/v1")
	RegisterRoutes(group, h)

	return &Server{
		engine: engine,
		http:   &http.Server{Addr: addr, Handler: engine},
	}
}

// Start blocks serving HTTP until the server is stopped or a listener
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// (including long-lived /generate-sql streams) to finish or ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
