// Package orchestrate fans a single prompt out to multiple models and
// collects every outcome, success or failure, without letting one slow or
// broken vendor hide the others' answers.
package orchestrate

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/modelarena/internal/observe"
	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// ErrNoModels is returned by [Comparator.Compare] when the request names no
// models.
var ErrNoModels = errors.New("no models requested")

// Failure describes one model's failed call in a comparison result.
type Failure struct {
	// Kind is the error classification ("configuration", "transient",
	// "malformed").
	Kind chat.ErrorKind `json:"kind"`

	// Message is a human-readable description safe to surface to clients.
	Message string `json:"message"`
}

// Outcome is the per-model slot in a comparison result. Exactly one of
// Response and Failure is set.
type Outcome struct {
	Response *types.ModelResponse `json:"response,omitempty"`
	Failure  *Failure             `json:"failure,omitempty"`
}

// Result maps each requested model id, verbatim, to its outcome. Every id
// passed to [Comparator.Compare] has an entry; duplicates collapse into one.
type Result map[string]Outcome

// Comparator runs concurrent multi-model comparisons against a registry.
type Comparator struct {
	reg            *chat.Registry
	metrics        *observe.Metrics
	callTimeout    time.Duration
	compareTimeout time.Duration
}

// New creates a Comparator. callTimeout bounds each individual model call,
// compareTimeout bounds a whole fan-out; zero or negative disables the
// respective deadline. A compareTimeout shorter than callTimeout is raised
// to callTimeout, so the outer deadline never cuts off a call the per-call
// budget still allows. Metrics may be nil.
func New(reg *chat.Registry, m *observe.Metrics, callTimeout, compareTimeout time.Duration) *Comparator {
	if compareTimeout > 0 && compareTimeout < callTimeout {
		compareTimeout = callTimeout
	}
	return &Comparator{reg: reg, metrics: m, callTimeout: callTimeout, compareTimeout: compareTimeout}
}

// Compare sends the same conversation to every model in modelIDs
// concurrently and waits for all of them to settle. One model's failure
// never cancels its siblings: a failed call is recorded as a [Failure] in
// that model's slot while the rest complete normally.
//
// The returned map's keys are exactly the requested ids. Compare itself only
// errors when the request is unusable as a whole (empty model list or an
// already-cancelled context).
func (c *Comparator) Compare(ctx context.Context, modelIDs []string, messages []types.Message, opts types.CallOptions) (Result, error) {
	if len(modelIDs) == 0 {
		return nil, ErrNoModels
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.compareTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.compareTimeout)
		defer cancel()
	}

	start := time.Now()
	log := observe.Logger(ctx)

	// Deduplicate while preserving the requested ids as result keys.
	unique := make([]string, 0, len(modelIDs))
	seen := make(map[string]struct{}, len(modelIDs))
	for _, id := range modelIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var (
		mu  sync.Mutex
		res = make(Result, len(unique))
	)

	// A plain errgroup, deliberately without WithContext: sibling calls must
	// keep running when one fails.
	var g errgroup.Group
	for _, id := range unique {
		g.Go(func() error {
			out := c.callOne(ctx, id, messages, opts)
			mu.Lock()
			res[id] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.CompareDuration.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(observe.Attr("models", strconv.Itoa(len(unique)))),
		)
	}
	log.Debug("comparison settled",
		"models", len(unique),
		"duration", elapsed,
	)
	return res, nil
}

// Retry re-runs a single model from an earlier comparison. The returned
// outcome replaces only that model's slot; the caller keeps every sibling
// result untouched.
func (c *Comparator) Retry(ctx context.Context, modelID string, messages []types.Message, opts types.CallOptions) Outcome {
	return c.callOne(ctx, modelID, messages, opts)
}

// callOne dispatches one model call through the registry with the per-call
// deadline applied, and folds the error into an Outcome.
func (c *Comparator) callOne(ctx context.Context, modelID string, messages []types.Message, opts types.CallOptions) Outcome {
	ctx, span := observe.StartSpan(ctx, "compare.call")
	defer span.End()

	callCtx := ctx
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	resp, err := c.reg.Call(callCtx, modelID, messages, opts)
	if err != nil {
		observe.Logger(ctx).Warn("model call failed",
			"model", modelID,
			"kind", string(chat.KindOf(err)),
			"error", err,
		)
		return Outcome{Failure: &Failure{
			Kind:    chat.KindOf(err),
			Message: err.Error(),
		}}
	}
	return Outcome{Response: resp}
}
