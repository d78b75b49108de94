package resilience

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/modelarena/internal/observe"
	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// Guard wraps a [chat.Adapter] with a per-vendor [CircuitBreaker] and call
// metrics. Only transient failures count against the breaker; a caller's
// configuration mistake says nothing about the vendor's health.
//
// Guard implements [chat.Adapter] itself, so guarded adapters register into
// the [chat.Registry] like any other.
type Guard struct {
	inner   chat.Adapter
	breaker *CircuitBreaker
	metrics *observe.Metrics
}

// NewGuard wraps inner with a circuit breaker configured by cfg. When
// cfg.Name is empty the inner adapter's vendor name is used. Metrics may be
// nil to disable instrumentation (useful in tests).
func NewGuard(inner chat.Adapter, m *observe.Metrics, cfg CircuitBreakerConfig) *Guard {
	if cfg.Name == "" {
		cfg.Name = inner.Name()
	}
	return &Guard{
		inner:   inner,
		breaker: NewCircuitBreaker(cfg),
		metrics: m,
	}
}

// Name returns the wrapped adapter's vendor name.
func (g *Guard) Name() string { return g.inner.Name() }

// Models returns the wrapped adapter's catalog.
func (g *Guard) Models() []types.ModelConfig { return g.inner.Models() }

// BreakerState exposes the breaker state, for readiness reporting.
func (g *Guard) BreakerState() State { return g.breaker.State() }

// CallModel forwards to the wrapped adapter through the breaker. A tripped
// breaker yields a transient [chat.CallError] wrapping [ErrCircuitOpen]
// without touching the vendor.
func (g *Guard) CallModel(ctx context.Context, messages []types.Message, modelID string, opts types.CallOptions) (*types.ModelResponse, error) {
	if g.metrics != nil {
		g.metrics.InflightCalls.Add(ctx, 1)
		defer g.metrics.InflightCalls.Add(ctx, -1)
	}

	start := time.Now()

	var resp *types.ModelResponse
	var callErr error
	err := g.breaker.Execute(func() error {
		resp, callErr = g.inner.CallModel(ctx, messages, modelID, opts)
		if callErr != nil && chat.KindOf(callErr) == chat.KindTransient {
			return callErr
		}
		return nil
	})

	if errors.Is(err, ErrCircuitOpen) {
		callErr = chat.TransientErr(g.inner.Name(), modelID, err)
		resp = nil
	}

	g.record(ctx, modelID, time.Since(start), callErr)
	if callErr != nil {
		return nil, callErr
	}
	return resp, nil
}

func (g *Guard) record(ctx context.Context, modelID string, elapsed time.Duration, callErr error) {
	if g.metrics == nil {
		return
	}
	vendor := g.inner.Name()
	g.metrics.ProviderCallDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(
			observe.Attr("provider", vendor),
			observe.Attr("model", modelID),
		),
	)
	if callErr != nil {
		g.metrics.RecordProviderRequest(ctx, vendor, "error")
		g.metrics.RecordProviderError(ctx, vendor, string(chat.KindOf(callErr)))
		return
	}
	g.metrics.RecordProviderRequest(ctx, vendor, "ok")
}
