package openai

import "github.com/MrWong99/modelarena/pkg/types"

// Catalog returns the static OpenAI model descriptors. Pricing is USD per
// million tokens as published by the vendor; update alongside price changes.
func Catalog() []types.ModelConfig {
	return []types.ModelConfig{
		{
			ID:          "gpt-4o",
			DisplayName: "GPT-4o",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 2.5, OutputPerMillion: 10},
			Limits:  types.Limits{MaxTokens: 16_384, ContextWindow: 128_000},
		},
		{
			ID:          "gpt-4o-mini",
			DisplayName: "GPT-4o mini",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.6},
			Limits:  types.Limits{MaxTokens: 16_384, ContextWindow: 128_000},
		},
		{
			ID:          "gpt-4.1",
			DisplayName: "GPT-4.1",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 2, OutputPerMillion: 8},
			Limits:  types.Limits{MaxTokens: 32_768, ContextWindow: 1_047_576},
		},
		{
			ID:          "o3-mini",
			DisplayName: "o3-mini",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Reasoning:       true,
				FunctionCalling: true,
				Streaming:       true,
			},
			// Reasoning tokens are billed at the output rate; the usage
			// report still splits them out.
			Pricing: types.Pricing{InputPerMillion: 1.1, OutputPerMillion: 4.4},
			Limits:  types.Limits{MaxTokens: 100_000, ContextWindow: 200_000},
		},
	}
}
