package protocols

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
)

// ErrorKind classifies prover failures
type ErrorKind int

const (
	// KindShape is a trace or option that does not fit the AIR context.
	// Reported before any proving work starts.
	KindShape ErrorKind = iota + 1

	// KindConstraintViolation is a constraint that does not vanish on the
	// trace. Only reported when trace validation is enabled.
	KindConstraintViolation

	// KindResource is an allocation, worker or GPU failure
	KindResource

	// KindTranscript is a Fiat-Shamir derivation failure. It indicates a
	// programming error rather than bad input.
	KindTranscript
)

// String returns the error kind name
func (k ErrorKind) String() string {
	switch k {
	case KindShape:
		return "ShapeError"
	case KindConstraintViolation:
		return "ConstraintViolation"
	case KindResource:
		return "ResourceError"
	case KindTranscript:
		return "TranscriptError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ProverError is the only error type Prove returns
type ProverError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrShape               = &ProverError{Kind: KindShape}
	ErrConstraintViolation = &ProverError{Kind: KindConstraintViolation}
	ErrResource            = &ProverError{Kind: KindResource}
	ErrTranscript          = &ProverError{Kind: KindTranscript}
)

// Error returns the error message
func (e *ProverError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause of the error
func (e *ProverError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ProverError of the same kind
func (e *ProverError) Is(target error) bool {
	t, ok := target.(*ProverError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Violation returns the constraint violation carried by err, if any
func Violation(err error) (*air.ConstraintViolation, bool) {
	var v *air.ConstraintViolation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// KindOf returns the kind of a ProverError in err's chain, or zero
func KindOf(err error) ErrorKind {
	var pe *ProverError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func newError(kind ErrorKind, cause error, format string, args ...interface{}) *ProverError {
	return &ProverError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func shapeError(cause error, format string, args ...interface{}) *ProverError {
	return newError(KindShape, cause, format, args...)
}

func resourceError(cause error, format string, args ...interface{}) *ProverError {
	return newError(KindResource, cause, format, args...)
}

func transcriptError(cause error, format string, args ...interface{}) *ProverError {
	return newError(KindTranscript, cause, format, args...)
}
