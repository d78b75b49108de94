package chat

import (
	"strings"
	"testing"

	"github.com/MrWong99/modelarena/pkg/types"
)

func TestCompose_SystemContextUserOrdering(t *testing.T) {
	msgs := []types.Message{
		{Role: types.RoleUser, Content: "the question"},
		{Role: types.RoleSystem, Content: "be terse"},
		{Role: types.RoleContext, Content: "background A"},
		{Role: types.RoleSystem, Content: "be polite"},
		{Role: types.RoleContext, Content: "background B"},
	}

	c := Compose(msgs)

	if c.System != "be terse\n\nbe polite" {
		t.Errorf("System = %q, want ordered concatenation", c.System)
	}
	ctxIdx := strings.Index(c.Prompt, "Context:")
	aIdx := strings.Index(c.Prompt, "background A")
	bIdx := strings.Index(c.Prompt, "background B")
	qIdx := strings.Index(c.Prompt, "the question")
	if ctxIdx != 0 {
		t.Errorf("Prompt must start with the Context: label, got %q", c.Prompt)
	}
	if !(aIdx < bIdx && bIdx < qIdx) {
		t.Errorf("Prompt ordering wrong: context entries must precede the user block, got %q", c.Prompt)
	}
}

func TestCompose_NoContext(t *testing.T) {
	c := Compose([]types.Message{{Role: types.RoleUser, Content: "hi"}})
	if c.Prompt != "hi" {
		t.Errorf("Prompt = %q, want bare user text without a Context label", c.Prompt)
	}
	if c.System != "" {
		t.Errorf("System = %q, want empty", c.System)
	}
}

func TestCompose_AssistantTurnsPreserved(t *testing.T) {
	msgs := []types.Message{
		{Role: types.RoleAssistant, Content: "first answer"},
		{Role: types.RoleAssistant, Content: "second answer"},
		{Role: types.RoleUser, Content: "follow-up"},
	}
	c := Compose(msgs)
	if len(c.History) != 2 {
		t.Fatalf("History length = %d, want 2", len(c.History))
	}
	if c.History[0].Content != "first answer" || c.History[1].Content != "second answer" {
		t.Errorf("assistant turns out of order: %+v", c.History)
	}
	if c.Prompt != "follow-up" {
		t.Errorf("Prompt = %q, want %q", c.Prompt, "follow-up")
	}
}

func TestCompose_EmptyMessagesSkipped(t *testing.T) {
	c := Compose([]types.Message{
		{Role: types.RoleSystem, Content: ""},
		{Role: types.RoleUser, Content: "only this"},
	})
	if c.System != "" || c.Prompt != "only this" {
		t.Errorf("empty messages must be skipped, got System=%q Prompt=%q", c.System, c.Prompt)
	}
}

func TestFlattenText_Ordering(t *testing.T) {
	c := Compose([]types.Message{
		{Role: types.RoleSystem, Content: "SYS"},
		{Role: types.RoleAssistant, Content: "PRIOR"},
		{Role: types.RoleContext, Content: "CTX"},
		{Role: types.RoleUser, Content: "ASK"},
	})
	flat := c.FlattenText()

	sys := strings.Index(flat, "SYS")
	prior := strings.Index(flat, "PRIOR")
	ctx := strings.Index(flat, "CTX")
	ask := strings.Index(flat, "ASK")
	if !(sys < prior && prior < ctx && ctx < ask) {
		t.Errorf("flattened ordering wrong: %q", flat)
	}
	if !strings.Contains(flat, "assistant: PRIOR") {
		t.Errorf("assistant turn must be labeled with its role, got %q", flat)
	}
}
