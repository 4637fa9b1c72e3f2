package pipeline

import (
	"fmt"
	"strings"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/language"
	"github.com/oukeidos/anytrans/internal/metadata"
	"github.com/oukeidos/anytrans/internal/openai"
	"github.com/oukeidos/anytrans/internal/prompt"
	"github.com/oukeidos/anytrans/internal/translator"
)

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultSourceLang = language.Auto
	DefaultTargetLang = "ko"
	DefaultSessions   = 1
	MaxSessions       = 16
)

// Config is the fully resolved set of inputs for one translation run.
// The command layer fills it from flags, environment, and the keychain.
type Config struct {
	InputPath  string
	OutputPath string
	// Kind forces the document format. Empty means detect from the file
	// extension.
	Kind document.Kind

	APIKey  string
	BaseURL string
	Model   string

	SourceLang  string
	TargetLang  string
	Tone        translator.Tone
	Temperature float64

	Sessions       int
	MaxBatchTokens int // 0 uses the model's default budget

	SystemPromptFile string
	CustomPrompt     string

	FailFast  bool
	Overwrite bool

	Confirmer  prompt.Confirmer
	OnProgress func(translator.Progress)
}

// Normalize fills defaults and clamps ranges. It is safe to call more
// than once.
func (c *Config) Normalize() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SourceLang == "" {
		c.SourceLang = DefaultSourceLang
	}
	if c.TargetLang == "" {
		c.TargetLang = DefaultTargetLang
	}
	c.SourceLang = strings.ToLower(strings.TrimSpace(c.SourceLang))
	c.TargetLang = strings.ToLower(strings.TrimSpace(c.TargetLang))
	if c.Tone == "" {
		c.Tone = translator.ToneAuto
	}
	if c.Sessions < 1 {
		c.Sessions = DefaultSessions
	}
	if c.Sessions > MaxSessions {
		c.Sessions = MaxSessions
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.Temperature > 2 {
		c.Temperature = 2
	}
	if c.BaseURL == "" {
		c.BaseURL = openai.DefaultBaseURL
	}
}

// Validate checks the resolved config. The input path is checked only
// when set; text mode runs without one.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return apperrors.New(apperrors.KindConfig,
			"no API key found; pass --openai-api-key, set OPENAI_API_KEY, or run 'anytrans env setup'", nil)
	}
	if c.TargetLang == "" {
		return apperrors.New(apperrors.KindConfig, "target language is required", nil)
	}
	if language.IsAuto(c.TargetLang) {
		return apperrors.New(apperrors.KindConfig,
			fmt.Sprintf("target language cannot be %q", language.Auto), nil)
	}
	if !language.IsAuto(c.SourceLang) && c.SourceLang == c.TargetLang {
		return apperrors.New(apperrors.KindConfig,
			fmt.Sprintf("source and target language are both %q", c.TargetLang), nil)
	}
	if c.MaxBatchTokens < 0 {
		return apperrors.New(apperrors.KindConfig, "max batch tokens must be positive", nil)
	}
	return nil
}

// batchTokenBudget returns the effective per-batch token budget.
func (c *Config) batchTokenBudget() int {
	if c.MaxBatchTokens > 0 {
		return c.MaxBatchTokens
	}
	return metadata.BatchTokenBudget(c.Model)
}

func (c *Config) promptOptions() translator.PromptOptions {
	return translator.PromptOptions{
		SourceLang: c.SourceLang,
		TargetLang: c.TargetLang,
		Tone:       c.Tone,
		Custom:     c.CustomPrompt,
	}
}
