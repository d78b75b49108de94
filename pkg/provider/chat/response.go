package chat

import (
	"time"

	"github.com/MrWong99/modelarena/pkg/types"
)

// BuildResponse assembles the normalized ModelResponse every adapter returns.
// Centralising this keeps the cost invariant in one place: cost is derived
// from usage × the model's pricing, and is absent whenever usage is absent.
func BuildResponse(mc types.ModelConfig, content, reasoning string, usage *types.TokenUsage, elapsed time.Duration) *types.ModelResponse {
	resp := &types.ModelResponse{
		Content:      content,
		Reasoning:    reasoning,
		ResponseTime: elapsed,
		Model:        mc,
	}
	if usage != nil {
		u := *usage
		resp.TokenUsage = &u
		cost := types.CostOf(u, mc.Pricing)
		resp.Cost = &cost
	}
	return resp
}

// FindModel returns the entry of catalog with the given id.
// Adapters use it to reject ids they do not serve.
func FindModel(catalog []types.ModelConfig, id string) (types.ModelConfig, bool) {
	for _, mc := range catalog {
		if mc.ID == id {
			return mc, true
		}
	}
	return types.ModelConfig{}, false
}
