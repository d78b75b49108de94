package chat

import (
	"regexp"
	"strings"
)

// reasoningTagRE matches delimiter-wrapped reasoning blocks. Both the
// <thinking> tag we prompt for and the <think> tag emitted natively by
// DeepSeek-style models are accepted.
var reasoningTagRE = regexp.MustCompile(`(?s)<(thinking|think)>(.*?)</(?:thinking|think)>\s*`)

// ReasoningInstruction is appended to the system block for models that have
// no structured reasoning channel but were asked to expose their reasoning.
const ReasoningInstruction = "Before your answer, write your step-by-step reasoning inside <thinking></thinking> tags. Everything outside the tags is shown to the user."

// ExtractReasoning splits delimiter-wrapped reasoning out of content.
// It returns the visible text with all reasoning blocks stripped, and the
// concatenated reasoning. Extraction is idempotent: stripped content contains
// no tags, so a second pass returns it unchanged with empty reasoning.
func ExtractReasoning(content string) (visible, reasoning string) {
	matches := reasoningTagRE.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content, ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := strings.TrimSpace(m[2]); text != "" {
			parts = append(parts, text)
		}
	}

	visible = strings.TrimSpace(reasoningTagRE.ReplaceAllString(content, ""))
	return visible, strings.Join(parts, "\n\n")
}
