package vybiumstackprover

import (
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// ParseProgram parses whitespace separated mnemonics. push takes its value
// as push.<n>; '#' starts a comment.
func ParseProgram(text string) (*Program, error) {
	program, err := vm.ParseProgram(text)
	if err != nil {
		return nil, &Error{Code: ErrInvalidInput, Message: "failed to parse program", Cause: err}
	}
	return program, nil
}

// Execute runs program from initialStack (top first) and returns its
// trace, padded with Halt rows to a power of two
func Execute(program *Program, initialStack []FieldElement) (*ExecutionResult, error) {
	return ExecuteWithLength(program, initialStack, vm.MinTraceLength)
}

// ExecuteWithLength is Execute with a minimum trace length
func ExecuteWithLength(program *Program, initialStack []FieldElement, minLength int) (*ExecutionResult, error) {
	if program == nil {
		return nil, &Error{Code: ErrInvalidInput, Message: "program is nil"}
	}
	result, err := vm.ExecuteWithLength(program, initialStack, minLength)
	if err != nil {
		return nil, &Error{Code: ErrVMExecution, Message: "VM execution failed", Cause: err}
	}
	return result, nil
}

// PublicInputsFor returns the public inputs of an execution
func PublicInputsFor(result *ExecutionResult) *PublicInputs {
	return air.NewPublicInputs(result.ProgramDigest, result.InitialStack, result.FinalStack)
}

// ProgramDigest returns the digest a complete run of program leaves in its
// trace
func ProgramDigest(program *Program) FieldElement {
	return vm.ProgramDigest(program)
}
