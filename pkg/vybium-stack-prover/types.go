package vybiumstackprover

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/protocols"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// FieldElement is an element of the Goldilocks field
type FieldElement = field.Element

// NewFieldElement reduces v into the field
func NewFieldElement(v uint64) FieldElement {
	return field.New(v)
}

// Trace is an execution trace: one row of TraceWidth columns per cycle
type Trace = vm.Trace

// TraceWidth is the number of columns of every trace
const TraceWidth = vm.TraceWidth

// Program is a sequence of encoded instructions
type Program = vm.Program

// Instruction is an opcode of the stack machine
type Instruction = vm.Instruction

// ExecutionResult is a trace with the values needed to build its public
// inputs
type ExecutionResult = vm.ExecutionResult

// PublicInputs are the program digest and the initial and final stacks,
// top first
type PublicInputs = air.PublicInputs

// Proof is a generated proof. Use MarshalProof for its byte form.
type Proof = protocols.Proof

// Stage is a step of the proving pipeline
type Stage = protocols.Stage

// NumStages is the number of OnStage callbacks of one proof
const NumStages = protocols.NumStages

// Config holds every prover parameter and can be loaded from YAML
type Config = utils.Config

// Backend names
const (
	BackendSequential = utils.BackendSequential
	BackendParallel   = utils.BackendParallel
	BackendGPU        = utils.BackendGPU
)

// HasGPU reports whether the binary was built with the icicle runtime
const HasGPU = protocols.HasIcicle

// NewPublicInputs copies the given values into a PublicInputs
func NewPublicInputs(digest FieldElement, initial, final []FieldElement) *PublicInputs {
	return air.NewPublicInputs(digest, initial, final)
}

// DefaultConfig returns the default prover parameters
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads prover parameters from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg, err := utils.LoadConfig(path)
	if err != nil {
		return nil, &Error{Code: ErrInvalidConfig, Message: "failed to load config", Cause: err}
	}
	return cfg, nil
}
