package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oukeidos/anytrans/internal/auth"
	"github.com/oukeidos/anytrans/internal/cleanup"
	"github.com/oukeidos/anytrans/internal/files"
	"github.com/oukeidos/anytrans/internal/logger"
	"github.com/oukeidos/anytrans/internal/metadata"
	"github.com/oukeidos/anytrans/internal/openai"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	isTerminal     = term.IsTerminal
	getEnvKey      = auth.GetEnvKey
	getKeychainKey = auth.GetKeychainKey
	hasKeychainKey = auth.HasKeychainKey
	promptForKey   = auth.PromptForAPIKey
)

// resolveAPIKey finds the OpenAI API key. Precedence: the flag, then the
// environment, then the keychain, then an interactive prompt.
func resolveAPIKey(flagKey string) (string, string, error) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, "Flag", nil
	}
	if key, ok := getEnvKey(); ok {
		return key, "Environment Variable", nil
	}
	if key, ok := getKeychainKey(); ok {
		return key, "Keychain", nil
	}

	if isTerminal(int(os.Stdin.Fd())) {
		key, err := promptForKey("OpenAI API Key (press Enter to skip): ")
		if err != nil {
			return "", "", fmt.Errorf("error reading API key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), "Terminal Prompt", nil
		}
	}

	return "", "", fmt.Errorf("no API key available; pass --openai-api-key, set %s, or run 'anytrans env setup'", auth.EnvVar)
}

func initLogging(opts *translateOptions) error {
	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)
	return nil
}

func printUsageStats(cmd *cobra.Command, usage openai.Usage, duration time.Duration, model string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n--- Execution Stats ---")
	fmt.Fprintf(out, "Time: %s\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Model: %s\n", model)
	if usage.TotalTokens > 0 {
		fmt.Fprintf(out, "Tokens: In=%d, Out=%d, Total=%d\n",
			usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
		fmt.Fprintf(out, "Estimated Cost: $%.5f\n", estimateCost(model, usage))
	}
}

func estimateCost(model string, usage openai.Usage) float64 {
	pricing, _ := metadata.Pricing(model)
	inCost := (float64(usage.PromptTokens) / 1_000_000) * pricing.InputPerMillion
	outCost := (float64(usage.CompletionTokens) / 1_000_000) * pricing.OutputPerMillion
	return inCost + outCost
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
