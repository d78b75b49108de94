// Package chat defines the Adapter interface for LLM chat backends and the
// Registry that dispatches calls to them by model id.
//
// An adapter wraps one vendor's chat API (OpenAI, Anthropic, Google Gemini,
// xAI Grok, DeepSeek, …) and exposes a uniform contract: it translates the
// shared ordered message list into the vendor's wire format, performs the
// call, extracts visible content, reasoning trace, and token usage, and
// derives the cost from the model's pricing. The surrounding orchestration
// never sees vendor SDK types or raw SDK errors.
//
// Implementors must be safe for concurrent use and must propagate context
// cancellation promptly. Every failure path must return a *CallError so the
// caller can distinguish configuration, transient, and malformed-response
// failures.
package chat

import (
	"context"

	"github.com/MrWong99/modelarena/pkg/types"
)

// Adapter is the abstraction over one vendor's chat API.
//
// CallModel is one request → one composed response; a vendor may stream
// internally but the adapter always returns the final composed result.
type Adapter interface {
	// Name returns the vendor name (e.g., "openai"). Stable for the lifetime
	// of the adapter and unique within a Registry.
	Name() string

	// Models returns the static catalog of models this adapter serves.
	// The returned slice must not be mutated by callers.
	Models() []types.ModelConfig

	// CallModel sends the ordered message list to modelID and waits for the
	// full response. The modelID must be one of the ids returned by Models.
	//
	// On failure the returned error is always a *CallError; adapters never
	// let a raw SDK error or panic escape to the caller.
	CallModel(ctx context.Context, messages []types.Message, modelID string, opts types.CallOptions) (*types.ModelResponse, error)
}
