package services

import (
	"errors"
	"fmt"
	"strings"

	"finance-gateway/models"
)

// ErrSymbolNotFound indicates a provider does not recognize the symbol.
// This is distinct from a provider being unreachable: the symbol genuinely
// does not exist in that provider's universe.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrUnconfigured indicates a data source is missing required credentials.
// Sources report this without attempting a network call.
var ErrUnconfigured = errors.New("data source not configured")

// ErrInvalidSymbol indicates the caller supplied a malformed symbol
var ErrInvalidSymbol = errors.New("invalid symbol")

// TransientError wraps provider failures that are worth retrying on another
// source: network errors, timeouts, 5xx responses, rate limiting, and
// malformed payloads.
type TransientError struct {
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError creates a TransientError with a reason and optional cause
func NewTransientError(reason string, err error) *TransientError {
	return &TransientError{Reason: reason, Err: err}
}

// FailureKind classifies why a data source could not answer
type FailureKind string

const (
	FailureNotFound     FailureKind = "not_found"
	FailureTransient    FailureKind = "transient"
	FailureUnconfigured FailureKind = "unconfigured"
)

// ClassifyFailure maps a source error onto the failure taxonomy. Anything that
// is not explicitly a not-found or unconfigured answer counts as transient, so
// unexpected errors still allow fallback to proceed.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrSymbolNotFound):
		return FailureNotFound
	case errors.Is(err, ErrUnconfigured):
		return FailureUnconfigured
	default:
		return FailureTransient
	}
}

// IsRetryable reports whether an error should be retried against the same
// source. Not-found and unconfigured answers are definitive.
func IsRetryable(err error) bool {
	return ClassifyFailure(err) == FailureTransient
}

// SourceFailure records how a single source failed during fallback
type SourceFailure struct {
	Source string      `json:"source"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// ExhaustedError is returned when every configured source failed to resolve a
// symbol. It carries the per-source failure mode so callers can distinguish
// "the symbol does not exist anywhere" from "every provider is down".
type ExhaustedError struct {
	Symbol   string
	Kind     models.DataKind
	Failures []SourceFailure
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", f.Source, f.Kind, f.Reason))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("no data sources configured for %s %s", e.Symbol, e.Kind)
	}
	return fmt.Sprintf("all data sources failed for %s %s: %s", e.Symbol, e.Kind, strings.Join(parts, "; "))
}

// AllNotFound reports whether every source that was actually asked answered
// not-found. Unconfigured sources are ignored since they never saw the symbol.
func (e *ExhaustedError) AllNotFound() bool {
	asked := 0
	for _, f := range e.Failures {
		switch f.Kind {
		case FailureUnconfigured:
			continue
		case FailureNotFound:
			asked++
		default:
			return false
		}
	}
	return asked > 0
}
