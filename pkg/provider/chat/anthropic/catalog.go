package anthropic

import "github.com/MrWong99/modelarena/pkg/types"

// Catalog returns the static Anthropic model descriptors. Pricing is USD per
// million tokens as published by the vendor.
func Catalog() []types.ModelConfig {
	return []types.ModelConfig{
		{
			ID:          "claude-opus-4-20250514",
			DisplayName: "Claude Opus 4",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Reasoning:       true,
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 15, OutputPerMillion: 75},
			Limits:  types.Limits{MaxTokens: 32_000, ContextWindow: 200_000},
		},
		{
			ID:          "claude-sonnet-4-20250514",
			DisplayName: "Claude Sonnet 4",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Reasoning:       true,
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 3, OutputPerMillion: 15},
			Limits:  types.Limits{MaxTokens: 64_000, ContextWindow: 200_000},
		},
		{
			ID:          "claude-3-5-haiku-latest",
			DisplayName: "Claude 3.5 Haiku",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.8, OutputPerMillion: 4},
			Limits:  types.Limits{MaxTokens: 8_192, ContextWindow: 200_000},
		},
	}
}
