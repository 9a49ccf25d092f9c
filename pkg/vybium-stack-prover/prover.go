package vybiumstackprover

import (
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/protocols"
)

// Options configures a proof
type Options struct {
	// Backend is BackendSequential, BackendParallel or BackendGPU
	Backend string

	// ValidateTrace re-checks every constraint on the trace before proving
	ValidateTrace bool

	// Workers bounds the parallel backend; 0 uses GOMAXPROCS
	Workers int

	// GPUFallback uses the parallel backend when the GPU is unavailable
	GPUFallback bool

	// OnStage is called after each pipeline stage completes
	OnStage func(Stage)

	// Config supplies the remaining protocol parameters. The fields above
	// override its values. nil uses DefaultConfig.
	Config *Config
}

// DefaultOptions returns sequential proving without validation
func DefaultOptions() Options {
	cfg := DefaultConfig()
	return Options{
		Backend:       cfg.Backend,
		ValidateTrace: cfg.ValidateTrace,
		Workers:       cfg.Workers,
		GPUFallback:   cfg.GPUFallback,
	}
}

// OptionsFromConfig copies a loaded configuration into Options
func OptionsFromConfig(cfg *Config) Options {
	return Options{
		Backend:       cfg.Backend,
		ValidateTrace: cfg.ValidateTrace,
		Workers:       cfg.Workers,
		GPUFallback:   cfg.GPUFallback,
		Config:        cfg,
	}
}

func (o Options) internal() protocols.Options {
	var cfg *Config
	if o.Config != nil {
		cfg = o.Config.Clone()
	} else {
		cfg = DefaultConfig()
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	cfg.ValidateTrace = o.ValidateTrace
	cfg.Workers = o.Workers
	cfg.GPUFallback = o.GPUFallback
	return protocols.Options{Config: cfg, OnStage: o.OnStage}
}

// Prove generates a proof that trace is a valid execution for inputs
func Prove(trace *Trace, inputs *PublicInputs, opts Options) (*Proof, error) {
	proof, err := protocols.Prove(trace, inputs, opts.internal())
	if err != nil {
		return nil, wrapProverError(err)
	}
	return proof, nil
}

// ProveProgram executes program and proves the resulting trace
func ProveProgram(program *Program, initialStack []FieldElement, opts Options) (*Proof, *ExecutionResult, error) {
	result, err := Execute(program, initialStack)
	if err != nil {
		return nil, nil, err
	}
	proof, err := Prove(result.Trace, PublicInputsFor(result), opts)
	if err != nil {
		return nil, result, err
	}
	return proof, result, nil
}

// ValidateTrace checks every constraint against trace without proving. It
// returns nil for a valid trace.
func ValidateTrace(trace *Trace, inputs *PublicInputs) error {
	if trace == nil {
		return &Error{Code: ErrShape, Message: "trace is nil"}
	}
	a, err := air.New(inputs, air.TraceInfo{Width: trace.Width(), Length: trace.Length()})
	if err != nil {
		return &Error{Code: ErrShape, Message: "failed to build AIR", Cause: err}
	}
	if err := a.Context().CheckTraceShape(trace.Width(), trace.Length()); err != nil {
		return &Error{Code: ErrShape, Message: "trace does not fit the AIR", Cause: err}
	}
	if v := air.Validate(a, trace); v != nil {
		return &Error{Code: ErrConstraintViolation, Message: "trace fails validation", Cause: v}
	}
	return nil
}

// MarshalProof serializes a proof to deterministic CBOR
func MarshalProof(proof *Proof) ([]byte, error) {
	data, err := proof.MarshalBinary()
	if err != nil {
		return nil, &Error{Code: ErrInvalidProof, Message: "failed to encode proof", Cause: err}
	}
	return data, nil
}

// UnmarshalProof restores a proof written by MarshalProof
func UnmarshalProof(data []byte) (*Proof, error) {
	proof := &Proof{}
	if err := proof.UnmarshalBinary(data); err != nil {
		return nil, &Error{Code: ErrInvalidProof, Message: "failed to decode proof", Cause: err}
	}
	return proof, nil
}
