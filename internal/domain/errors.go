package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so the orchestrator can decide
// user-facing messaging without string matching.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota
	KindInsufficientData
	KindModelOutOfRange
	KindPhysiologyDivergence
	KindNoValidSamples
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInsufficientData:
		return "insufficient_data"
	case KindModelOutOfRange:
		return "model_out_of_range"
	case KindPhysiologyDivergence:
		return "physiology_divergence"
	case KindNoValidSamples:
		return "no_valid_samples"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrInsufficientData     = &Error{Kind: KindInsufficientData}
	ErrModelOutOfRange      = &Error{Kind: KindModelOutOfRange}
	ErrPhysiologyDivergence = &Error{Kind: KindPhysiologyDivergence}
	ErrNoValidSamples       = &Error{Kind: KindNoValidSamples}
)

// Error is the single error type returned by the engine components.
type Error struct {
	Kind ErrorKind
	Op   string // component operation, e.g. "weather.interpolate"
	Err  error
}

// NewError builds an Error of the given kind with a formatted cause.
func NewError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match against the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the ErrorKind from err. The second value is false when err
// is not an engine error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
