package chat

import (
	"strings"

	"github.com/MrWong99/modelarena/pkg/types"
)

// contextLabel prefixes the folded context block inside the composed user
// text. The label is part of the normalization contract and covered by tests.
const contextLabel = "Context:"

// HistoryTurn is one preserved assistant turn inside a Composed conversation.
type HistoryTurn struct {
	// Role is always types.RoleAssistant today; kept explicit so single-turn
	// vendors can label the speaker when folding history into flat text.
	Role types.Role

	// Content is the turn's text.
	Content string
}

// Composed is the vendor-neutral shape every adapter starts from. The
// normalization policy is fixed: all system entries concatenate (in order)
// into System; all context entries concatenate into a labeled context block;
// all user entries concatenate into the final user block appended after the
// context block; assistant entries are preserved as individual turns in their
// original relative order.
type Composed struct {
	// System is the concatenated system block. Empty when no system entries
	// were present.
	System string

	// History holds the preserved assistant turns, oldest first.
	History []HistoryTurn

	// Prompt is the composed user text: the labeled context block (if any)
	// followed by the concatenated user entries.
	Prompt string
}

// Compose normalizes an ordered message list into a Composed conversation.
// Unknown roles are folded into the user block rather than dropped, so a
// future role addition degrades gracefully instead of losing text.
func Compose(messages []types.Message) Composed {
	var system, contextParts, userParts []string
	var history []HistoryTurn

	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case types.RoleSystem:
			system = append(system, m.Content)
		case types.RoleContext:
			contextParts = append(contextParts, m.Content)
		case types.RoleAssistant:
			history = append(history, HistoryTurn{Role: types.RoleAssistant, Content: m.Content})
		default:
			userParts = append(userParts, m.Content)
		}
	}

	var prompt strings.Builder
	if len(contextParts) > 0 {
		prompt.WriteString(contextLabel)
		prompt.WriteString("\n")
		prompt.WriteString(strings.Join(contextParts, "\n\n"))
	}
	if len(userParts) > 0 {
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(strings.Join(userParts, "\n\n"))
	}

	return Composed{
		System:  strings.Join(system, "\n\n"),
		History: history,
		Prompt:  prompt.String(),
	}
}

// FlattenText renders the whole conversation as one text block for vendors
// that accept only single-turn input. Ordering follows the normalization
// contract: system, then each assistant turn labeled by role, then the
// composed user text.
func (c Composed) FlattenText() string {
	var b strings.Builder
	if c.System != "" {
		b.WriteString(c.System)
	}
	for _, t := range c.History {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
	}
	if c.Prompt != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Prompt)
	}
	return b.String()
}
