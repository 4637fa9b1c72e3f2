package apperrors

import (
	"errors"
	"strings"
)

// Kind classifies a failure for retry decisions and exit codes.
type Kind string

const (
	// KindParse covers unreadable or malformed input documents.
	KindParse Kind = "parse"
	// KindConfig covers missing API keys and invalid flag combinations.
	KindConfig Kind = "config"
	// KindTransient covers server errors and network issues.
	KindTransient Kind = "transient"
	// KindRateLimit covers upstream API rate limiting.
	KindRateLimit Kind = "rate_limit"
	// KindAuth covers rejected credentials.
	KindAuth Kind = "auth"
	// KindAlignment covers translated output that does not line up with the
	// input batch (count mismatch, duplicate or hallucinated IDs). The model
	// is non-deterministic, so a retry may succeed.
	KindAlignment Kind = "alignment"
	// KindBadRequest covers requests the upstream API permanently rejects.
	KindBadRequest Kind = "bad_request"
	// KindWrite covers failures while persisting output.
	KindWrite Kind = "write"
)

// Exit codes distinguish, at minimum, input errors from translation errors
// from output errors.
const (
	ExitOK          = 0
	ExitGeneric     = 1
	ExitInput       = 2
	ExitTranslation = 3
	ExitOutput      = 4
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindParse:
		return "Input file could not be parsed."
	case KindConfig:
		return "Invalid configuration."
	case KindTransient:
		return "Temporary upstream error. Please try again."
	case KindRateLimit:
		return "Rate limit exceeded. Please try again later."
	case KindAuth:
		return "Authentication failed. Please verify your API key and permissions."
	case KindAlignment:
		return "Translated output did not align with the input batch."
	case KindBadRequest:
		return "Request rejected by upstream API."
	case KindWrite:
		return "Failed to write output file."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

// Parse, Config, and Write surface the underlying message verbatim: it
// describes the user's own files, flags, and paths, not API internals.
func Parse(err error) error  { return New(KindParse, messageOf(err), err) }
func Config(err error) error { return New(KindConfig, messageOf(err), err) }
func Write(err error) error  { return New(KindWrite, messageOf(err), err) }

func Transient(err error) error { return New(KindTransient, "", err) }
func RateLimit(err error) error { return New(KindRateLimit, "", err) }
func Auth(err error) error      { return New(KindAuth, "", err) }
func Alignment(err error) error { return New(KindAlignment, "", err) }

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsRetryable reports whether the translation client should retry after err.
// Transient and rate-limit failures may clear up on their own; alignment
// failures may clear up because LLM output is non-deterministic.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindTransient || e.Kind == KindRateLimit || e.Kind == KindAlignment
}

func IsRateLimit(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindRateLimit
}

// ExitCode maps an error to the process exit code taxonomy.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if !errors.As(err, &e) {
		return ExitGeneric
	}
	switch e.Kind {
	case KindParse, KindConfig:
		return ExitInput
	case KindWrite:
		return ExitOutput
	case KindTransient, KindRateLimit, KindAuth, KindAlignment, KindBadRequest:
		return ExitTranslation
	default:
		return ExitGeneric
	}
}
