// Package anthropic provides a chat adapter backed by the Anthropic API.
//
// Claude models return their reasoning trace as structured thinking blocks,
// so no delimiter prompting is needed; the adapter still runs tag extraction
// over the text blocks so behaviour stays uniform with the other vendors.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// vendorName is the provider name reported in catalogs and errors.
const vendorName = "anthropic"

// defaultMaxTokens is the completion cap applied when the caller supplies
// none. Anthropic requires an explicit max_tokens on every request.
const defaultMaxTokens = 2048

// Adapter implements chat.Adapter using the Anthropic API.
type Adapter struct {
	client           anthropic.Client
	catalog          []types.ModelConfig
	defaultMaxTokens int
}

// config holds optional configuration for the adapter.
type config struct {
	baseURL          string
	httpClient       *http.Client
	defaultMaxTokens int
}

// Option is a functional option for Adapter.
type Option func(*config)

// WithBaseURL overrides the default Anthropic API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient substitutes the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithDefaultMaxTokens overrides the completion cap used when CallOptions
// does not specify one.
func WithDefaultMaxTokens(n int) Option {
	return func(c *config) {
		c.defaultMaxTokens = n
	}
}

// New constructs a new Anthropic chat Adapter.
func New(apiKey string, opts ...Option) (*Adapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: apiKey must not be empty")
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
	}

	return &Adapter{
		client:           anthropic.NewClient(reqOpts...),
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
		return nil, chat.ConfigErr(vendorName, modelID, fmt.Errorf("model not in anthropic catalog"))
	}

	params := a.buildParams(mc, messages, opts)

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, classify(modelID, err)
	}
	if len(resp.Content) == 0 {
		return nil, chat.MalformedErr(vendorName, modelID, fmt.Errorf("empty content in response"))
	}

	var text, thinking strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "thinking":
			if thinking.Len() > 0 {
				thinking.WriteString("\n\n")
			}
			thinking.WriteString(block.Thinking)
		}
	}

	content, tagged := chat.ExtractReasoning(text.String())
	reasoning := thinking.String()
	if tagged != "" {
		if reasoning != "" {
			reasoning += "\n\n"
		}
		reasoning += tagged
	}

	usage := &types.TokenUsage{
		Input:  int(resp.Usage.InputTokens),
		Output: int(resp.Usage.OutputTokens),
	}

	return chat.BuildResponse(mc, content, reasoning, usage, elapsed), nil
}

// buildParams converts the shared message list into Anthropic SDK params
// using the fixed normalization policy. Anthropic carries the system block in
// a dedicated field rather than a message.
func (a *Adapter) buildParams(mc types.ModelConfig, messages []types.Message, opts types.CallOptions) anthropic.MessageNewParams {
	composed := chat.Compose(messages)

	var msgs []anthropic.MessageParam
	for _, turn := range composed.History {
		msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
	}
	if composed.Prompt != "" {
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(composed.Prompt)))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(mc.ID),
		MaxTokens: int64(opts.EffectiveMaxTokens(a.defaultMaxTokens, mc.Limits)),
		Messages:  msgs,
	}
	if composed.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: composed.System}}
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	return params
}

// classify converts an Anthropic SDK error into a typed CallError.
func classify(modelID string, err error) *chat.CallError {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return chat.ClassifyStatus(vendorName, modelID, apierr.StatusCode, err)
	}
	return chat.ClassifyStatus(vendorName, modelID, 0, err)
}
