package anthropic

import (
	"testing"

	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty api key")
	}
}

func TestCatalog_Invariants(t *testing.T) {
	seen := map[string]bool{}
	for _, mc := range Catalog() {
		if mc.Provider != "anthropic" {
			t.Errorf("%s: Provider = %q, want anthropic", mc.ID, mc.Provider)
		}
		if seen[mc.ID] {
			t.Errorf("duplicate model id %q", mc.ID)
		}
		seen[mc.ID] = true
		if mc.Pricing.InputPerMillion <= 0 || mc.Pricing.OutputPerMillion <= 0 {
			t.Errorf("%s: pricing must be positive", mc.ID)
		}
	}
}

func TestBuildParams_SystemGoesToDedicatedField(t *testing.T) {
	a, err := New("sk-ant-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mc, _ := chat.FindModel(a.catalog, "claude-sonnet-4-20250514")

	params := a.buildParams(mc, []types.Message{
		{Role: types.RoleSystem, Content: "rules"},
		{Role: types.RoleContext, Content: "facts"},
		{Role: types.RoleUser, Content: "ask"},
	}, types.CallOptions{})

	if len(params.System) != 1 || params.System[0].Text != "rules" {
		t.Errorf("System = %+v, want the composed system block", params.System)
	}
	if len(params.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1 composed user message", len(params.Messages))
	}
}

func TestBuildParams_MaxTokensAlwaysSet(t *testing.T) {
	a, err := New("sk-ant-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mc, _ := chat.FindModel(a.catalog, "claude-3-5-haiku-latest")

	params := a.buildParams(mc, []types.Message{{Role: types.RoleUser, Content: "x"}}, types.CallOptions{})
	if params.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", params.MaxTokens, defaultMaxTokens)
	}

	params = a.buildParams(mc, []types.Message{{Role: types.RoleUser, Content: "x"}}, types.CallOptions{MaxTokens: 1 << 30})
	if params.MaxTokens != int64(mc.Limits.MaxTokens) {
		t.Errorf("MaxTokens = %d, want clamp to %d", params.MaxTokens, mc.Limits.MaxTokens)
	}
}
