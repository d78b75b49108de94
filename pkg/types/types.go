// Package types defines the shared types used across all modelarena packages.
//
// These types form the lingua franca between vendor adapters, the registry,
// the comparison orchestrator, and the arena turn engine. They are
// intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem is a high-priority instruction message.
	RoleSystem Role = "system"

	// RoleUser is the end user's prompt text.
	RoleUser Role = "user"

	// RoleContext is a synthetic bucket for retrieved or background text.
	// No vendor has a native context role; adapters fold context messages
	// into the composed user block under a "Context:" label.
	RoleContext Role = "context"

	// RoleAssistant is a prior model response within the conversation.
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a recognised message role.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleContext, RoleAssistant:
		return true
	}
	return false
}

// Message is a single entry in an ordered LLM conversation.
// Insertion order is the conversation order and must be preserved by adapters.
type Message struct {
	// Role is one of system, user, context, or assistant.
	Role Role `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// Capabilities describes what a model supports. Informational; adapters do not
// reject calls based on these flags.
type Capabilities struct {
	// Reasoning indicates the model emits (or can be prompted to emit) a
	// chain-of-thought trace separable from the visible answer.
	Reasoning bool `json:"reasoning"`

	// Multimodal indicates the model accepts image inputs.
	Multimodal bool `json:"multimodal"`

	// FunctionCalling indicates native tool/function calling support.
	FunctionCalling bool `json:"function_calling"`

	// Streaming indicates the vendor offers a streaming endpoint for this
	// model. Every call in modelarena is still modelled as request → one
	// composed response.
	Streaming bool `json:"streaming"`
}

// Pricing holds a model's USD rates per million tokens.
type Pricing struct {
	// InputPerMillion is the USD cost per 1M prompt tokens.
	InputPerMillion float64 `json:"input_per_million"`

	// OutputPerMillion is the USD cost per 1M completion tokens.
	OutputPerMillion float64 `json:"output_per_million"`

	// ReasoningPerMillion is the USD cost per 1M reasoning tokens for models
	// that bill them separately. Zero means reasoning tokens are billed at
	// the output rate (and are already included in the output count).
	ReasoningPerMillion float64 `json:"reasoning_per_million,omitempty"`
}

// Limits holds a model's hard token limits.
type Limits struct {
	// MaxTokens is the maximum completion tokens a single call may request.
	// Caller-supplied CallOptions.MaxTokens is clamped to this value.
	MaxTokens int `json:"max_tokens"`

	// ContextWindow is the combined input + output token budget.
	ContextWindow int `json:"context_window"`
}

// ModelConfig is the static descriptor for one model. Instances are created
// once at process start from each vendor package's hard-coded catalog and are
// never mutated afterwards.
type ModelConfig struct {
	// ID is the vendor's wire identifier (e.g., "gpt-4o", "claude-sonnet-4-20250514").
	// IDs are unique across the whole catalog.
	ID string `json:"id"`

	// DisplayName is the human-readable model name shown in comparisons.
	DisplayName string `json:"display_name"`

	// Provider is the owning vendor name (e.g., "openai", "anthropic").
	Provider string `json:"provider"`

	Capabilities Capabilities `json:"capabilities"`
	Pricing      Pricing      `json:"pricing"`
	Limits       Limits       `json:"limits"`
}

// CallOptions carries caller-supplied overrides for a single model call.
// The zero value means "use the adapter defaults".
type CallOptions struct {
	// MaxTokens caps the completion length. Values above the model's
	// Limits.MaxTokens are clamped; zero selects the adapter default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls output randomness. Nil selects the vendor default.
	Temperature *float64 `json:"temperature,omitempty"`
}

// EffectiveMaxTokens resolves the max-token limit for a call against the
// model's hard limit: min(requested or fallback, limit). A non-positive
// limit means the model declares no cap.
func (o CallOptions) EffectiveMaxTokens(fallback int, limits Limits) int {
	n := o.MaxTokens
	if n <= 0 {
		n = fallback
	}
	if limits.MaxTokens > 0 && n > limits.MaxTokens {
		n = limits.MaxTokens
	}
	return n
}

// TokenUsage is the vendor-reported token accounting for one call.
type TokenUsage struct {
	// Input is the number of prompt tokens consumed.
	Input int `json:"input"`

	// Output is the number of completion tokens generated.
	Output int `json:"output"`

	// Reasoning is the number of separately counted reasoning tokens.
	// Zero for models that do not report them.
	Reasoning int `json:"reasoning,omitempty"`
}

// Cost is the USD cost breakdown for one call. A Cost value is only ever
// derived from a TokenUsage and the Pricing of the model that produced it —
// never stored independently of its usage.
type Cost struct {
	Input     float64 `json:"input"`
	Output    float64 `json:"output"`
	Reasoning float64 `json:"reasoning,omitempty"`
	Total     float64 `json:"total"`
}

// CostOf computes the cost of usage under pricing p. Reasoning tokens are
// billed at ReasoningPerMillion when set and at the output rate otherwise.
func CostOf(usage TokenUsage, p Pricing) Cost {
	c := Cost{
		Input:  float64(usage.Input) / 1e6 * p.InputPerMillion,
		Output: float64(usage.Output) / 1e6 * p.OutputPerMillion,
	}
	if usage.Reasoning > 0 {
		rate := p.ReasoningPerMillion
		if rate == 0 {
			rate = p.OutputPerMillion
		}
		c.Reasoning = float64(usage.Reasoning) / 1e6 * rate
	}
	c.Total = c.Input + c.Output + c.Reasoning
	return c
}

// ModelResponse is the normalized result of one model call. Produced once per
// call and immutable afterwards.
type ModelResponse struct {
	// Content is the user-visible answer with any reasoning trace stripped.
	Content string `json:"content"`

	// Reasoning is the model's chain-of-thought trace, when one was found.
	// Empty means no reasoning was emitted; adapters never set it to an
	// empty-but-present value.
	Reasoning string `json:"reasoning,omitempty"`

	// ResponseTime is the wall-clock duration of the vendor call only —
	// normalization and post-processing are excluded.
	ResponseTime time.Duration `json:"response_time"`

	// TokenUsage is the vendor-reported accounting, nil when the vendor
	// returned none.
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`

	// Cost is derived from TokenUsage × the model's Pricing. Nil whenever
	// TokenUsage is nil.
	Cost *Cost `json:"cost,omitempty"`

	// Model is a snapshot of the config that served this call.
	Model ModelConfig `json:"model"`
}
