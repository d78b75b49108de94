// Package openai provides a chat adapter backed by the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// vendorName is the provider name reported in catalogs and errors.
const vendorName = "openai"

// defaultMaxTokens is the completion cap applied when the caller supplies none.
const defaultMaxTokens = 2048

// Adapter implements chat.Adapter using the OpenAI API.
type Adapter struct {
	client           oai.Client
	catalog          []types.ModelConfig
	defaultMaxTokens int
}

// config holds optional configuration for the adapter.
type config struct {
	baseURL          string
	httpClient       *http.Client
	timeout          time.Duration
	defaultMaxTokens int
}

// Option is a functional option for Adapter.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient substitutes the HTTP client used for all requests.
// Tests use this to point the adapter at a fake backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithDefaultMaxTokens overrides the completion cap used when CallOptions
// does not specify one.
func WithDefaultMaxTokens(n int) Option {
	return func(c *config) {
		c.defaultMaxTokens = n
	}
}

// New constructs a new OpenAI chat Adapter.
func New(apiKey string, opts ...Option) (*Adapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}

	cfg := &config{defaultMaxTokens: defaultMaxTokens}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	} else if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Adapter{
		client:           oai.NewClient(reqOpts...),
		catalog:          Catalog(),
		defaultMaxTokens: cfg.defaultMaxTokens,
	}, nil
}

// Name implements chat.Adapter.
func (a *Adapter) Name() string { return vendorName }

// Models implements chat.Adapter.
func (a *Adapter) Models() []types.ModelConfig { return a.catalog }

// CallModel implements chat.Adapter.
func (a *Adapter) CallModel(ctx context.Context, messages []types.Message, modelID string, opts types.CallOptions) (*types.ModelResponse, error) {
	mc, ok := chat.FindModel(a.catalog, modelID)
	if !ok {
		return nil, chat.ConfigErr(vendorName, modelID, fmt.Errorf("model not in openai catalog"))
	}

	params := a.buildParams(mc, messages, opts)

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, classify(modelID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, chat.MalformedErr(vendorName, modelID, fmt.Errorf("empty choices in response"))
	}

	content, reasoning := chat.ExtractReasoning(resp.Choices[0].Message.Content)

	var usage *types.TokenUsage
	if resp.Usage.TotalTokens > 0 {
		reasoningTokens := int(resp.Usage.CompletionTokensDetails.ReasoningTokens)
		usage = &types.TokenUsage{
			Input:     int(resp.Usage.PromptTokens),
			Output:    int(resp.Usage.CompletionTokens) - reasoningTokens,
			Reasoning: reasoningTokens,
		}
	}

	return chat.BuildResponse(mc, content, reasoning, usage, elapsed), nil
}

// buildParams converts the shared message list into OpenAI SDK params using
// the fixed normalization policy.
func (a *Adapter) buildParams(mc types.ModelConfig, messages []types.Message, opts types.CallOptions) oai.ChatCompletionNewParams {
	composed := chat.Compose(messages)

	var msgs []oai.ChatCompletionMessageParamUnion
	if composed.System != "" {
		msgs = append(msgs, oai.SystemMessage(composed.System))
	}
	for _, turn := range composed.History {
		msgs = append(msgs, oai.AssistantMessage(turn.Content))
	}
	if composed.Prompt != "" {
		msgs = append(msgs, oai.UserMessage(composed.Prompt))
	}

	params := oai.ChatCompletionNewParams{
		Model:               shared.ChatModel(mc.ID),
		Messages:            msgs,
		MaxCompletionTokens: param.NewOpt(int64(opts.EffectiveMaxTokens(a.defaultMaxTokens, mc.Limits))),
	}
	if opts.Temperature != nil {
		params.Temperature = param.NewOpt(*opts.Temperature)
	}
	return params
}

// classify converts an OpenAI SDK error into a typed CallError.
func classify(modelID string, err error) *chat.CallError {
	var apierr *oai.Error
	if errors.As(err, &apierr) {
		return chat.ClassifyStatus(vendorName, modelID, apierr.StatusCode, err)
	}
	return chat.ClassifyStatus(vendorName, modelID, 0, err)
}
