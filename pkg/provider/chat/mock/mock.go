// Package mock provides a test double for the chat.Adapter interface.
//
// Use Adapter in unit tests to feed controlled responses to the registry,
// orchestrator, and arena engine without a live vendor backend. All response
// fields are safe to set before calling any method; mutating them during a
// concurrent call is the caller's responsibility.
//
// Example:
//
//	a := &mock.Adapter{
//	    Vendor:  "mock",
//	    Catalog: []types.ModelConfig{{ID: "m1", Provider: "mock"}},
//	    Response: &types.ModelResponse{Content: "Hello!"},
//	}
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/modelarena/pkg/types"
)

// Call records a single invocation of CallModel.
type Call struct {
	// Ctx is the context passed to CallModel.
	Ctx context.Context
	// Messages is the message list passed to CallModel.
	Messages []types.Message
	// ModelID is the model the call was addressed to.
	ModelID string
	// Opts are the options passed to CallModel.
	Opts types.CallOptions
}

// Adapter is a mock implementation of chat.Adapter.
// Zero values for response fields cause CallModel to return (nil, nil);
// set Err to inject a failure.
type Adapter struct {
	mu sync.Mutex

	// --- Configuration ---

	// Vendor is returned by Name. Defaults to "mock" when empty.
	Vendor string

	// Catalog is returned by Models.
	Catalog []types.ModelConfig

	// Response is returned by CallModel for every model id, unless
	// ResponseFor has an entry for the id.
	Response *types.ModelResponse

	// ResponseFor overrides Response per model id.
	ResponseFor map[string]*types.ModelResponse

	// Err, if non-nil, is returned by CallModel for every model id, unless
	// ErrFor has an entry for the id.
	Err error

	// ErrFor overrides Err per model id.
	ErrFor map[string]error

	// Delay, when set, makes CallModel sleep before answering (or return the
	// context error if the context expires first). Used to simulate slow
	// vendors and timeouts.
	Delay time.Duration

	// DelayFor overrides Delay per model id.
	DelayFor map[string]time.Duration

	// --- Call records (read after test) ---

	// Calls records every invocation of CallModel in order.
	Calls []Call
}

// Name implements chat.Adapter.
func (a *Adapter) Name() string {
	if a.Vendor == "" {
		return "mock"
	}
	return a.Vendor
}

// Models implements chat.Adapter.
func (a *Adapter) Models() []types.ModelConfig {
	return a.Catalog
}

// CallModel records the call and returns the configured response or error.
func (a *Adapter) CallModel(ctx context.Context, messages []types.Message, modelID string, opts types.CallOptions) (*types.ModelResponse, error) {
	a.mu.Lock()
	a.Calls = append(a.Calls, Call{Ctx: ctx, Messages: messages, ModelID: modelID, Opts: opts})
	delay := a.Delay
	if d, ok := a.DelayFor[modelID]; ok {
		delay = d
	}
	err := a.Err
	if e, ok := a.ErrFor[modelID]; ok {
		err = e
	}
	resp := a.Response
	if r, ok := a.ResponseFor[modelID]; ok {
		resp = r
	}
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CallCount returns the number of recorded CallModel invocations.
func (a *Adapter) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Calls)
}

// LastCall returns the most recent recorded call, or a zero Call when none
// have been made.
func (a *Adapter) LastCall() Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Calls) == 0 {
		return Call{}
	}
	return a.Calls[len(a.Calls)-1]
}
