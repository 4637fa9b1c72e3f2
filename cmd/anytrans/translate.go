package main

import (
	"fmt"
	"os"
	"time"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/logger"
	"github.com/oukeidos/anytrans/internal/pipeline"
	"github.com/oukeidos/anytrans/internal/prompt"
	"github.com/oukeidos/anytrans/internal/translator"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	outputPath       string
	sourceLang       string
	targetLang       string
	apiKey           string
	baseURL          string
	modelName        string
	sessions         int
	temperature      float64
	tone             string
	systemPromptFile string
	customPrompt     string
	maxBatchTokens   int
	failFast         bool
	yes              bool
	logFilePath      string
	debug            bool
	// kind is set by the subcommand, not a flag; empty means detect from
	// the file extension.
	kind document.Kind
}

func newTranslateCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <input.srt>",
		Short: "Translate a subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kind = document.KindSubtitle
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func newTranslateTextCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate-text <input.txt>",
		Short: "Translate a plain text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kind = document.KindText
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: <input>_<target>.<ext>)")
	cmd.Flags().StringVarP(&opts.sourceLang, "source-lang", "s", pipeline.DefaultSourceLang, "Source language code, or 'auto' to detect")
	cmd.Flags().StringVarP(&opts.targetLang, "target-lang", "t", pipeline.DefaultTargetLang, "Target language code")
	cmd.Flags().StringVar(&opts.apiKey, "openai-api-key", "", "OpenAI API key (overrides env and keychain)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVarP(&opts.modelName, "model", "m", pipeline.DefaultModel, "Model name")
	cmd.Flags().IntVarP(&opts.sessions, "sessions", "n", pipeline.DefaultSessions, "Number of concurrent translation sessions (1-16)")
	cmd.Flags().Float64VarP(&opts.temperature, "temperature", "T", 1.0, "Sampling temperature (0-2)")
	cmd.Flags().StringVar(&opts.tone, "tone", string(translator.ToneAuto), "Translation tone: formal, informal, or auto-contextual")
	cmd.Flags().StringVarP(&opts.systemPromptFile, "system-prompt-file", "p", "", "File whose content replaces the built-in system prompt")
	cmd.Flags().StringVar(&opts.customPrompt, "custom-prompt", "", "Extra instructions appended to the system prompt")
	cmd.Flags().IntVar(&opts.maxBatchTokens, "max-batch-tokens", 0, "Per-batch token budget (default: model specific)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Abort on the first failed batch instead of keeping original text")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite output file without asking")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

func (opts *translateOptions) buildConfig() (*pipeline.Config, error) {
	tone, err := translator.ParseTone(opts.tone)
	if err != nil {
		return nil, apperrors.Config(err)
	}
	key, source, err := resolveAPIKey(opts.apiKey)
	if err != nil {
		return nil, apperrors.Config(err)
	}
	logger.Info("using API key", "source", source)

	return &pipeline.Config{
		OutputPath:       opts.outputPath,
		Kind:             opts.kind,
		APIKey:           key,
		BaseURL:          opts.baseURL,
		Model:            opts.modelName,
		SourceLang:       opts.sourceLang,
		TargetLang:       opts.targetLang,
		Tone:             tone,
		Temperature:      opts.temperature,
		Sessions:         opts.sessions,
		MaxBatchTokens:   opts.maxBatchTokens,
		SystemPromptFile: opts.systemPromptFile,
		CustomPrompt:     opts.customPrompt,
		FailFast:         opts.failFast,
		Overwrite:        opts.yes,
		Confirmer:        prompt.DefaultConfirmer(),
		OnProgress: func(p translator.Progress) {
			switch p.State {
			case translator.StateCompleted:
				logger.Info("batch completed", "index", p.BatchIndex, "total", p.TotalBatches)
			case translator.StateInProgress:
				logger.Warn("batch retry", "index", p.BatchIndex, "attempt", p.Attempt)
			case translator.StateFailed:
				logger.Error("batch failed", "index", p.BatchIndex, "error", p.Err)
			}
		},
	}, nil
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if err := initLogging(opts); err != nil {
		return err
	}

	cfg, err := opts.buildConfig()
	if err != nil {
		return err
	}
	cfg.InputPath = args[0]
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Warning: expected 1 argument but got %d. Did you forget quotes around the file path?\n", len(args))
		fmt.Fprintf(os.Stderr, "  Using input: %s\n", args[0])
	}

	startTime := time.Now()
	ctx, stop := signalContext()
	defer stop()

	result, err := pipeline.Run(ctx, cfg)
	if result != nil {
		printUsageStats(cmd, result.Usage, time.Since(startTime), opts.modelName)
	}
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("translation canceled", "error", err)
			return err
		}
		return err
	}

	switch result.Status {
	case pipeline.StatusSuccess:
		fmt.Fprintf(cmd.OutOrStdout(), "Translated %d segments -> %s\n", result.TotalSegments, result.OutputPath)
		return nil
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d of %d batches untranslated (original text kept)\n",
			result.OutputPath, len(result.FailedBatches), result.TotalBatches)
		return apperrors.New(apperrors.KindTransient,
			fmt.Sprintf("translation finished with status: %s", result.Status), nil)
	}
}

