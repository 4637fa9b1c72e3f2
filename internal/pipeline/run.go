package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/files"
	"github.com/oukeidos/anytrans/internal/logger"
	"github.com/oukeidos/anytrans/internal/openai"
	"github.com/oukeidos/anytrans/internal/translator"
)

// newClient builds the API client for a run. Swapped out in tests.
var newClient = func(cfg *Config) openai.Translator {
	return openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature)
}

// SetClientFactoryForTesting replaces the client factory and returns a
// restore function.
func SetClientFactoryForTesting(fn func(cfg *Config) openai.Translator) func() {
	old := newClient
	newClient = fn
	return func() { newClient = old }
}

// DefaultOutputPath derives the output name from the input and target
// language: movie.srt translated to ko becomes movie_ko.srt.
func DefaultOutputPath(inputPath, targetLang string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	return fmt.Sprintf("%s_%s%s", stem, targetLang, ext)
}

// DetectKind picks the document format from the file extension.
func DetectKind(path string) document.Kind {
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return document.KindSubtitle
	}
	return document.KindText
}

// Run translates one file end to end: load, batch, translate, merge,
// write. Segments from exhausted batches keep their original text and
// the result reports StatusPartial or StatusFailed.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.InputPath == "" {
		return nil, apperrors.Config(fmt.Errorf("input file is required"))
	}

	inputPath, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return nil, apperrors.Config(fmt.Errorf("resolving input path: %w", err))
	}
	if err := files.RejectSymlinkPath(inputPath); err != nil {
		return nil, err
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath, cfg.TargetLang)
	}
	outputPath, err = filepath.Abs(outputPath)
	if err != nil {
		return nil, apperrors.Config(fmt.Errorf("resolving output path: %w", err))
	}
	if outputPath == inputPath {
		return nil, apperrors.Config(fmt.Errorf("output path equals input path: %s", inputPath))
	}
	outputPath, err = resolveOverwrite(outputPath, cfg)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(inputPath, cfg.Kind)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded document",
		"path", inputPath, "kind", string(doc.Kind), "segments", len(doc.Segments))

	promptOpts := cfg.promptOptions()
	if cfg.SystemPromptFile != "" {
		body, err := os.ReadFile(cfg.SystemPromptFile)
		if err != nil {
			return nil, apperrors.Config(fmt.Errorf("reading system prompt file: %w", err))
		}
		promptOpts.Override = string(body)
	}

	tr := translator.New(newClient(cfg), cfg.batchTokenBudget(), cfg.Sessions, promptOpts)
	tr.SetFailFast(cfg.FailFast)
	tr.SetProgressFunc(cfg.OnProgress)

	trRes, err := tr.TranslateDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	res := &Result{
		OutputPath:    outputPath,
		TotalSegments: len(doc.Segments),
		TotalBatches:  trRes.TotalBatches,
		FailedBatches: trRes.FailedBatches,
		Usage:         trRes.Usage,
	}
	switch {
	case len(trRes.FailedBatches) == 0:
		res.Status = StatusSuccess
	case len(trRes.FailedBatches) == trRes.TotalBatches:
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}

	if cfg.FailFast && res.Status != StatusSuccess {
		return res, apperrors.New(apperrors.KindTransient,
			fmt.Sprintf("aborted: %d of %d batches failed", len(trRes.FailedBatches), trRes.TotalBatches), nil)
	}
	if res.Status == StatusFailed {
		return res, apperrors.New(apperrors.KindTransient,
			fmt.Sprintf("no batch translated (%d of %d failed)", len(trRes.FailedBatches), trRes.TotalBatches), nil)
	}

	out := doc.WithTranslations(trRes.Translations)
	if err := document.Save(outputPath, out); err != nil {
		return res, err
	}
	logger.Info("wrote output", "path", outputPath, "status", res.Status.String())
	return res, nil
}

func loadDocument(path string, kind document.Kind) (document.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return document.Document{}, apperrors.Config(fmt.Errorf("input file: %w", err))
	}
	if kind == "" {
		kind = DetectKind(path)
	}
	if kind == document.KindSubtitle {
		return document.LoadSRT(path)
	}
	return document.LoadText(path)
}

// resolveOverwrite decides what to do when the output already exists:
// --yes overwrites, an interactive yes overwrites, an interactive no picks
// a free sibling name, and a non-interactive run without --yes fails.
func resolveOverwrite(outputPath string, cfg *Config) (string, error) {
	if _, err := os.Stat(outputPath); err != nil {
		if os.IsNotExist(err) {
			return outputPath, nil
		}
		return "", apperrors.Config(fmt.Errorf("output file: %w", err))
	}
	if cfg.Overwrite {
		return outputPath, nil
	}

	ok, err := cfg.Confirmer.ConfirmOverwrite(outputPath, false)
	if err != nil {
		return "", apperrors.Config(err)
	}
	if ok {
		return outputPath, nil
	}

	alt, found, err := files.SafePath(outputPath)
	if err != nil {
		return "", apperrors.Write(err)
	}
	if !found {
		return "", apperrors.Config(fmt.Errorf("no free output name near %s", outputPath))
	}
	logger.Info("output exists, using alternative name", "path", alt)
	return alt, nil
}
