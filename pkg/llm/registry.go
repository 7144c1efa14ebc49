package llm

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

func newLLMError(spec ModelSpec, attempt int, err error) *srvErrors.Error {
	return srvErrors.NewLLMError(spec.Provider, spec.ModelID, attempt, err.Error())
}

// Registry caches one resilient Client per ModelSpec, following the same
// "single instance per key" shape as pkg/dbadapter.Registry and
// pkg/vectorstore.Registry.
type Registry struct {
	mu      sync.Mutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func registryKey(spec ModelSpec) string {
	return spec.Provider + "|" + spec.ModelID + "|" + spec.BaseURL
}

// Get returns the resilient client for spec, building and caching it on
// first use.
func (r *Registry) Get(spec ModelSpec) (Client, error) {
	key := registryKey(spec)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[key]; ok {
		return c, nil
	}

	inner, err := NewClient(spec)
	if err != nil {
		return nil, err
	}

	resilient := newResilientClient(spec, inner)
	r.clients[key] = resilient
	return resilient, nil
}

// resilientClient wraps a provider Client with a cenkalti/backoff retry
// pattern and a per-provider circuit breaker (grounded on jordigilh-kubernaut's
// sony/gobreaker dependency) that trips after 5 consecutive failed calls,
// whatever the error.
type resilientClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker
	spec    ModelSpec
}

func newResilientClient(spec ModelSpec, inner Client) *resilientClient {
	settings := gobreaker.Settings{
		Name:        spec.Provider + ":" + spec.ModelID,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.S().Named("llm_registry").Warnw("circuit breaker state change",
				"provider", name, "from", from.String(), "to", to.String())
		},
	}
	return &resilientClient{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings), spec: spec}
}

func (r *resilientClient) Generate(ctx context.Context, req Request) (Response, error) {
	attempt := 0
	operation := func() (Response, error) {
		attempt++
		out, err := r.breaker.Execute(func() (any, error) {
			return r.inner.Generate(ctx, req)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return Response{}, backoff.Permanent(err)
			}
			return Response{}, err
		}
		return out.(Response), nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
}

func (r *resilientClient) CountTokens(text string) int {
	return r.inner.CountTokens(text)
}
