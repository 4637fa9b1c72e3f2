package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	cause := errors.New("connection reset")

	withMsg := New(KindTransient, "upstream hiccup", cause)
	if withMsg.Error() != "upstream hiccup" {
		t.Errorf("Error() = %q, want %q", withMsg.Error(), "upstream hiccup")
	}

	withoutMsg := New(KindRateLimit, "", cause)
	if withoutMsg.Error() != defaultSafeMessage(KindRateLimit) {
		t.Errorf("Error() = %q, want default rate limit message", withoutMsg.Error())
	}

	if !errors.Is(withMsg, cause) {
		t.Error("expected Unwrap to expose the cause")
	}

	cfg := Config(errors.New("source and target language are both \"ko\""))
	if cfg.Error() != `source and target language are both "ko"` {
		t.Errorf("Config() message = %q, want the verbatim cause", cfg.Error())
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Alignment(errors.New("count mismatch")))
	kind, ok := KindOf(err)
	if !ok || kind != KindAlignment {
		t.Errorf("KindOf() = %v, %v, want %v, true", kind, ok, KindAlignment)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should not match plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", Transient(errors.New("503")), true},
		{"rate limit", RateLimit(errors.New("429")), true},
		{"alignment", Alignment(errors.New("mismatch")), true},
		{"auth", Auth(errors.New("401")), false},
		{"bad request", New(KindBadRequest, "", errors.New("400")), false},
		{"parse", Parse(errors.New("bad srt")), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"parse", Parse(errors.New("bad")), ExitInput},
		{"config", Config(errors.New("no key")), ExitInput},
		{"auth", Auth(errors.New("401")), ExitTranslation},
		{"transient", Transient(errors.New("503")), ExitTranslation},
		{"alignment", Alignment(errors.New("mismatch")), ExitTranslation},
		{"write", Write(errors.New("read-only fs")), ExitOutput},
		{"plain", errors.New("boom"), ExitGeneric},
		{"wrapped write", fmt.Errorf("saving: %w", Write(errors.New("denied"))), ExitOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
