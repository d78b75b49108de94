// Package anyllm provides chat adapters backed by
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface.
// modelarena uses it for the Google Gemini and DeepSeek vendors.
//
// Usage:
//
//	a, err := anyllm.NewGemini(os.Getenv("GEMINI_API_KEY"))
//	a, err := anyllm.NewDeepSeek(os.Getenv("DEEPSEEK_API_KEY"))
package anyllm

import (
	"context"
	"fmt"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"

	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// defaultMaxTokens is the completion cap applied when the caller supplies none.
const defaultMaxTokens = 2048

// Adapter implements chat.Adapter by wrapping an any-llm-go backend.
type Adapter struct {
	backend          anyllmlib.Provider
	vendor           string
	catalog          []types.ModelConfig
	defaultMaxTokens int
}

// config holds optional configuration for the adapter.
type config struct {
	baseURL          string
	defaultMaxTokens int
}

// Option is a functional option for the adapter constructors.
type Option func(*config)

// WithBaseURL overrides the vendor's default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithDefaultMaxTokens overrides the completion cap used when CallOptions
// does not specify one.
func WithDefaultMaxTokens(n int) Option {
	return func(c *config) {
		c.defaultMaxTokens = n
	}
}

// NewGemini creates the Google Gemini adapter.
func NewGemini(apiKey string, opts ...Option) (*Adapter, error) {
	return newAdapter("gemini", apiKey, GeminiCatalog(), opts...)
}

// NewDeepSeek creates the DeepSeek adapter.
func NewDeepSeek(apiKey string, opts ...Option) (*Adapter, error) {
	return newAdapter("deepseek", apiKey, DeepSeekCatalog(), opts...)
}

func newAdapter(vendor, apiKey string, catalog []types.ModelConfig, opts ...Option) (*Adapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anyllm: %s apiKey must not be empty", vendor)
	}

	cfg := &config{defaultMaxTokens: defaultMaxTokens}
	for _, o := range opts {
		o(cfg)
	}

	libOpts := []anyllmlib.Option{anyllmlib.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		libOpts = append(libOpts, anyllmlib.WithBaseURL(cfg.baseURL))
	}

	var backend anyllmlib.Provider
	var err error
	switch vendor {
	case "gemini":
		backend, err = gemini.New(libOpts...)
	case "deepseek":
		backend, err = deepseek.New(libOpts...)
	default:
		return nil, fmt.Errorf("anyllm: unsupported vendor %q", vendor)
	}
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", vendor, err)
	}

	return &Adapter{
		backend:          backend,
		vendor:           vendor,
		catalog:          catalog,
		defaultMaxTokens: cfg.defaultMaxTokens,
	}, nil
}

// Name implements chat.Adapter.
func (a *Adapter) Name() string { return a.vendor }

// Models implements chat.Adapter.
func (a *Adapter) Models() []types.ModelConfig { return a.catalog }

// CallModel implements chat.Adapter.
func (a *Adapter) CallModel(ctx context.Context, messages []types.Message, modelID string, opts types.CallOptions) (*types.ModelResponse, error) {
	mc, ok := chat.FindModel(a.catalog, modelID)
	if !ok {
		return nil, chat.ConfigErr(a.vendor, modelID, fmt.Errorf("model not in %s catalog", a.vendor))
	}

	params := a.buildParams(mc, messages, opts)

	start := time.Now()
	resp, err := a.backend.Completion(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		// any-llm-go does not expose status codes; an unclassified failure
		// stays retryable.
		return nil, chat.TransientErr(a.vendor, modelID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, chat.MalformedErr(a.vendor, modelID, fmt.Errorf("empty choices in response"))
	}

	// DeepSeek reasoner models emit inline <think> blocks; Gemini models are
	// prompted for <thinking> tags. Both are handled by the shared extractor.
	content, reasoning := chat.ExtractReasoning(resp.Choices[0].Message.ContentString())

	var usage *types.TokenUsage
	if resp.Usage != nil {
		usage = &types.TokenUsage{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
		}
	}

	return chat.BuildResponse(mc, content, reasoning, usage, elapsed), nil
}

// buildParams converts the shared message list into any-llm-go params using
// the fixed normalization policy.
func (a *Adapter) buildParams(mc types.ModelConfig, messages []types.Message, opts types.CallOptions) anyllmlib.CompletionParams {
	composed := chat.Compose(messages)

	system := composed.System
	if mc.Capabilities.Reasoning && a.vendor == "gemini" {
		if system != "" {
			system += "\n\n"
		}
		system += chat.ReasoningInstruction
	}

	var msgs []anyllmlib.Message
	if system != "" {
		msgs = append(msgs, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: system})
	}
	for _, turn := range composed.History {
		msgs = append(msgs, anyllmlib.Message{Role: "assistant", Content: turn.Content})
	}
	if composed.Prompt != "" {
		msgs = append(msgs, anyllmlib.Message{Role: "user", Content: composed.Prompt})
	}

	params := anyllmlib.CompletionParams{
		Model:    mc.ID,
		Messages: msgs,
	}

	maxTokens := opts.EffectiveMaxTokens(a.defaultMaxTokens, mc.Limits)
	params.MaxTokens = &maxTokens

	if opts.Temperature != nil {
		t := *opts.Temperature
		params.Temperature = &t
	}

	return params
}
