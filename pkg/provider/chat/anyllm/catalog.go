package anyllm

import "github.com/MrWong99/modelarena/pkg/types"

// GeminiCatalog returns the static Google Gemini model descriptors.
// Pricing is USD per million tokens as published by the vendor.
func GeminiCatalog() []types.ModelConfig {
	return []types.ModelConfig{
		{
			ID:          "gemini-2.5-pro",
			DisplayName: "Gemini 2.5 Pro",
			Provider:    "gemini",
			Capabilities: types.Capabilities{
				Reasoning:       true,
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 1.25, OutputPerMillion: 10},
			Limits:  types.Limits{MaxTokens: 65_536, ContextWindow: 1_048_576},
		},
		{
			ID:          "gemini-2.5-flash",
			DisplayName: "Gemini 2.5 Flash",
			Provider:    "gemini",
			Capabilities: types.Capabilities{
				Reasoning:       true,
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.3, OutputPerMillion: 2.5},
			Limits:  types.Limits{MaxTokens: 65_536, ContextWindow: 1_048_576},
		},
		{
			ID:          "gemini-2.0-flash",
			DisplayName: "Gemini 2.0 Flash",
			Provider:    "gemini",
			Capabilities: types.Capabilities{
				Multimodal:      true,
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.1, OutputPerMillion: 0.4},
			Limits:  types.Limits{MaxTokens: 8_192, ContextWindow: 1_048_576},
		},
	}
}

// DeepSeekCatalog returns the static DeepSeek model descriptors.
func DeepSeekCatalog() []types.ModelConfig {
	return []types.ModelConfig{
		{
			ID:          "deepseek-chat",
			DisplayName: "DeepSeek V3",
			Provider:    "deepseek",
			Capabilities: types.Capabilities{
				FunctionCalling: true,
				Streaming:       true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.27, OutputPerMillion: 1.1},
			Limits:  types.Limits{MaxTokens: 8_192, ContextWindow: 65_536},
		},
		{
			ID:          "deepseek-reasoner",
			DisplayName: "DeepSeek R1",
			Provider:    "deepseek",
			Capabilities: types.Capabilities{
				Reasoning: true,
				Streaming: true,
			},
			Pricing: types.Pricing{InputPerMillion: 0.55, OutputPerMillion: 2.19},
			Limits:  types.Limits{MaxTokens: 65_536, ContextWindow: 65_536},
		},
	}
}
