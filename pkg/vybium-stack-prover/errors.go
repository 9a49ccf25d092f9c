package vybiumstackprover

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/protocols"
)

// ErrorCode represents a prover error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents a program or input that cannot be parsed
	ErrInvalidInput

	// ErrVMExecution represents a program that fails to execute
	ErrVMExecution

	// ErrShape represents a trace that does not fit the AIR
	ErrShape

	// ErrConstraintViolation represents a trace rejected by validation
	ErrConstraintViolation

	// ErrResource represents an allocation, worker or GPU failure
	ErrResource

	// ErrTranscript represents a Fiat-Shamir derivation failure
	ErrTranscript

	// ErrInvalidProof represents a proof that cannot be decoded
	ErrInvalidProof
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:             "unknown",
	ErrInvalidConfig:       "invalid config",
	ErrInvalidInput:        "invalid input",
	ErrVMExecution:         "vm execution",
	ErrShape:               "shape",
	ErrConstraintViolation: "constraint violation",
	ErrResource:            "resource",
	ErrTranscript:          "transcript",
	ErrInvalidProof:        "invalid proof",
}

// String returns the error code name
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code %d", int(c))
}

// Error represents a prover error
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-stack-prover error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-stack-prover error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ConstraintViolation names the constraint and row a trace breaks
type ConstraintViolation = air.ConstraintViolation

// AsConstraintViolation returns the violation carried by err, if any
func AsConstraintViolation(err error) (*ConstraintViolation, bool) {
	return protocols.Violation(err)
}

// CodeOf returns the code of the first *Error in err's chain
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

var kindCodes = map[protocols.ErrorKind]ErrorCode{
	protocols.KindShape:               ErrShape,
	protocols.KindConstraintViolation: ErrConstraintViolation,
	protocols.KindResource:            ErrResource,
	protocols.KindTranscript:          ErrTranscript,
}

// wrapProverError maps an internal prover error onto the public codes
func wrapProverError(err error) error {
	if err == nil {
		return nil
	}
	code, ok := kindCodes[protocols.KindOf(err)]
	if !ok {
		code = ErrUnknown
	}
	return &Error{Code: code, Message: "proof generation failed", Cause: err}
}
