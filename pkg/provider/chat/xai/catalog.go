package xai

import "github.com/MrWong99/modelarena/pkg/types"

// Catalog returns the static xAI Grok model descriptors. Pricing is USD per
// million tokens as published by the vendor.
func Catalog() []types.ModelConfig {
	return []types.ModelConfig{
		{
			ID:          "grok-3",
			DisplayName: "Grok 3",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 3, OutputPerMillion: 15},
			Limits:  types.Limits{MaxTokens: 16_384, ContextWindow: 131_072},
		},
		{
			ID:          "grok-3-mini",
			DisplayName: "Grok 3 Mini",
			Provider:    vendorName,
			Capabilities: types.Capabilities{
				Reasoning:       true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.3, OutputPerMillion: 0.5},
			Limits:  types.Limits{MaxTokens: 16_384, ContextWindow: 131_072},
		},
	}
}
