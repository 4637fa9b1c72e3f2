package translator

import (
	"fmt"
	"strings"

	"github.com/oukeidos/anytrans/internal/language"
)

// Tone is the stylistic register instruction embedded in the prompt.
type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneInformal Tone = "informal"
	// ToneAuto lets the model pick the register from speaker relationships
	// and context.
	ToneAuto Tone = "auto-contextual"
)

// ParseTone validates a tone flag value.
func ParseTone(s string) (Tone, error) {
	switch Tone(strings.TrimSpace(strings.ToLower(s))) {
	case ToneFormal:
		return ToneFormal, nil
	case ToneInformal:
		return ToneInformal, nil
	case ToneAuto, "":
		return ToneAuto, nil
	default:
		return "", fmt.Errorf("invalid tone %q (formal, informal, auto-contextual)", s)
	}
}

func toneInstruction(tone Tone) string {
	switch tone {
	case ToneFormal:
		return "Use a formal register (honorifics and polite forms where the target language has them)."
	case ToneInformal:
		return "Use an informal, conversational register."
	default:
		return "Determine formal/informal tone from the speaker relationships and context."
	}
}

// PromptOptions carries everything the system prompt is built from.
type PromptOptions struct {
	SourceLang string // language code or "auto"
	TargetLang string
	Tone       Tone
	// Override replaces the default prompt body entirely (the
	// --system-prompt-file content).
	Override string
	// Custom is appended after the base prompt (--custom-prompt).
	Custom string
}

// SystemPrompt builds the system prompt for a translation session. The
// output-shape rules are always appended, even under an override: the
// scheduler depends on the JSON contract to realign results.
func SystemPrompt(opts PromptOptions) string {
	targetName := language.DisplayName(opts.TargetLang)

	var base string
	if strings.TrimSpace(opts.Override) != "" {
		base = strings.TrimSpace(opts.Override)
	} else {
		sourceClause := fmt.Sprintf("Translate the provided %s segments into %s.",
			language.DisplayName(opts.SourceLang), targetName)
		if language.IsAuto(opts.SourceLang) {
			sourceClause = fmt.Sprintf("Detect the source language and translate the provided segments into %s.", targetName)
		}

		base = fmt.Sprintf(`You are a professional translator specializing in subtitles and prose.
%s

Rules:
- Maintain the original meaning, names, numbers, and formatting markers.
- %s
- Write ONLY the %s translation; never include the source text.`,
			sourceClause, toneInstruction(opts.Tone), targetName)
	}

	if strings.TrimSpace(opts.Custom) != "" {
		base += "\n\n" + strings.TrimSpace(opts.Custom)
	}

	return base + fmt.Sprintf(`

Input format: a JSON object with a 'target' array; each element has an 'id' and its 'lines'.
Output format:
- Respond ONLY with a JSON object holding 'source_lang' and a 'translations' array.
- Each element must have the 'id' of an input segment and its translated 'text'.
- Produce exactly one element per input segment. Never merge, split, or reorder segments.
- Use '\n' inside 'text' where the original had multiple lines and a break aids readability in %s.`, targetName)
}
