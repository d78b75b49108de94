package arena

import (
	"fmt"
	"strings"

	"github.com/MrWong99/modelarena/pkg/types"
)

// Mode selects the conversation format of a session.
type Mode string

const (
	// ModeDebate is a formal two-seat debate: affirmative vs. negative,
	// strictly alternating.
	ModeDebate Mode = "debate"

	// ModeBattle is a free-for-all: any seat may be chosen for the next turn,
	// optionally rebutting any specific prior turn.
	ModeBattle Mode = "battle"

	// ModeCreativeCombat is a creative-writing duel judged on style rather
	// than argument.
	ModeCreativeCombat Mode = "creative-combat"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDebate, ModeBattle, ModeCreativeCombat:
		return true
	}
	return false
}

// MinIntensity and MaxIntensity bound the adversarial style parameter.
const (
	MinIntensity = 1
	MaxIntensity = 5
)

// intensityBlocks maps the intensity parameter to a canned rhetorical-style
// instruction appended to every prompt in the session.
var intensityBlocks = map[int]string{
	1: "Keep the tone collegial and measured. Concede good points where warranted and focus on finding common ground.",
	2: "Be polite but firm. Defend your position clearly while remaining respectful of the opposing view.",
	3: "Argue with conviction. Challenge weak points directly, use pointed examples, and do not concede easily.",
	4: "Be sharply adversarial. Dismantle the opposing argument piece by piece, call out fallacies by name, and press every advantage.",
	5: "Go for the rhetorical jugular. Use biting wit, devastating counterexamples, and relentless pressure. Take no prisoners, but never fabricate facts.",
}

// IntensityBlock returns the style instruction for the given intensity,
// clamped into [MinIntensity, MaxIntensity].
func IntensityBlock(intensity int) string {
	if intensity < MinIntensity {
		intensity = MinIntensity
	}
	if intensity > MaxIntensity {
		intensity = MaxIntensity
	}
	return intensityBlocks[intensity]
}

// Debate seat roles. Debate sessions always have exactly these two seats, in
// this order.
const (
	RoleAffirmative = "affirmative"
	RoleNegative    = "negative"
)

// openingPrompt builds the first prompt for a seat that has not spoken yet.
func openingPrompt(mode Mode, role, topic string, intensity int) []types.Message {
	var sys, usr string
	switch mode {
	case ModeDebate:
		stance := "FOR"
		if role == RoleNegative {
			stance = "AGAINST"
		}
		sys = fmt.Sprintf(
			"You are the %s side in a formal debate. Argue %s the motion. Present your strongest case in a focused opening statement.\n\n%s",
			strings.ToUpper(role), stance, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("The motion: %s\n\nDeliver your opening statement.", topic)
	case ModeBattle:
		sys = fmt.Sprintf(
			"You are %q in an open argument battle. Stake out a clear position and defend it.\n\n%s",
			role, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("The subject: %s\n\nMake your opening move.", topic)
	case ModeCreativeCombat:
		sys = fmt.Sprintf(
			"You are %q in a creative-writing duel. Your goal is to outwrite your opponents: stronger imagery, tighter prose, bolder ideas.\n\n%s",
			role, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("The brief: %s\n\nWrite your opening piece.", topic)
	}
	return []types.Message{
		{Role: types.RoleSystem, Content: sys},
		{Role: types.RoleUser, Content: usr},
	}
}

// directPrompt builds a prompt for a caller-supplied question, keeping the
// seat's persona and the session's style instruction.
func directPrompt(mode Mode, role, topic, prompt string, intensity int) []types.Message {
	var sys string
	switch mode {
	case ModeDebate:
		sys = fmt.Sprintf(
			"You are the %s side in a formal debate on the motion: %s. Answer the moderator's question in character.\n\n%s",
			strings.ToUpper(role), topic, IntensityBlock(intensity),
		)
	case ModeBattle:
		sys = fmt.Sprintf(
			"You are %q in an open argument battle about: %s. Answer the question below in character.\n\n%s",
			role, topic, IntensityBlock(intensity),
		)
	case ModeCreativeCombat:
		sys = fmt.Sprintf(
			"You are %q in a creative-writing duel on the brief: %s. Respond to the direction below in character.\n\n%s",
			role, topic, IntensityBlock(intensity),
		)
	}
	return []types.Message{
		{Role: types.RoleSystem, Content: sys},
		{Role: types.RoleUser, Content: prompt},
	}
}

// rebuttalPrompt builds a prompt targeting a specific prior turn's content.
func rebuttalPrompt(mode Mode, role, topic, priorContent string, intensity int) []types.Message {
	var sys, usr string
	switch mode {
	case ModeDebate:
		sys = fmt.Sprintf(
			"You are the %s side in a formal debate on the motion: %s. It is your turn to rebut.\n\n%s",
			strings.ToUpper(role), topic, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("Your opponent just argued:\n\n%s\n\nWrite your rebuttal. Address their points directly before advancing your own.", priorContent)
	case ModeBattle:
		sys = fmt.Sprintf(
			"You are %q in an open argument battle about: %s.\n\n%s",
			role, topic, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("An opponent said:\n\n%s\n\nCounter it.", priorContent)
	case ModeCreativeCombat:
		sys = fmt.Sprintf(
			"You are %q in a creative-writing duel on the brief: %s.\n\n%s",
			role, topic, IntensityBlock(intensity),
		)
		usr = fmt.Sprintf("Your rival submitted:\n\n%s\n\nAnswer with a piece that outshines it.", priorContent)
	}
	return []types.Message{
		{Role: types.RoleSystem, Content: sys},
		{Role: types.RoleUser, Content: usr},
	}
}
