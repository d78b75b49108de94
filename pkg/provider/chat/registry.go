package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrWong99/modelarena/pkg/types"
)

// ErrUnknownModel is wrapped by Registry.Call when no registered adapter
// serves the requested model id.
var ErrUnknownModel = errors.New("chat: unknown model id")

// Registry holds all configured adapters and dispatches calls by model id.
//
// Adapters are registered once at startup — a vendor without a configured
// credential is simply never registered, so its models are absent from the
// catalog instead of failing calls. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter // vendor name → adapter
	byModel  map[string]Adapter // model id → owning adapter
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		byModel:  make(map[string]Adapter),
	}
}

// Register adds an adapter and indexes its catalog. Registering a second
// adapter under the same vendor name, or one whose catalog collides with an
// already-indexed model id, is a wiring bug and returns an error.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, ok := r.adapters[name]; ok {
		return fmt.Errorf("chat: adapter %q already registered", name)
	}
	for _, mc := range a.Models() {
		if owner, ok := r.byModel[mc.ID]; ok {
			return fmt.Errorf("chat: model id %q already served by adapter %q", mc.ID, owner.Name())
		}
	}

	r.adapters[name] = a
	for _, mc := range a.Models() {
		r.byModel[mc.ID] = a
	}
	return nil
}

// ListModels returns the merged catalog across all registered adapters,
// sorted by provider then id for a stable API response.
func (r *Registry) ListModels() []types.ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []types.ModelConfig
	for _, a := range r.adapters {
		all = append(all, a.Models()...)
	}
	slices.SortFunc(all, func(x, y types.ModelConfig) int {
		if x.Provider != y.Provider {
			if x.Provider < y.Provider {
				return -1
			}
			return 1
		}
		if x.ID < y.ID {
			return -1
		}
		if x.ID > y.ID {
			return 1
		}
		return 0
	})
	return all
}

// Lookup returns the ModelConfig for id, or false when no adapter serves it.
func (r *Registry) Lookup(id string) (types.ModelConfig, bool) {
	r.mu.RLock()
	a, ok := r.byModel[id]
	r.mu.RUnlock()
	if !ok {
		return types.ModelConfig{}, false
	}
	for _, mc := range a.Models() {
		if mc.ID == id {
			return mc, true
		}
	}
	return types.ModelConfig{}, false
}

// Call resolves modelID to its owning adapter and delegates. An unknown id is
// a configuration error fatal to this call only.
func (r *Registry) Call(ctx context.Context, modelID string, messages []types.Message, opts types.CallOptions) (*types.ModelResponse, error) {
	r.mu.RLock()
	a, ok := r.byModel[modelID]
	r.mu.RUnlock()
	if !ok {
		return nil, ConfigErr("", modelID, fmt.Errorf("%w: %q", ErrUnknownModel, modelID))
	}
	return a.CallModel(ctx, messages, modelID, opts)
}
