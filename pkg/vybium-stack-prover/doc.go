// Package vybiumstackprover proves correct execution of stack machine
// programs with a STARK.
//
// The machine has a fixed 26-instruction set over the Goldilocks field: 16
// stack registers, 4 memory cells, field arithmetic, comparisons, u8
// bitwise operations and conditional stack manipulation. Every
// instruction's semantics is encoded as a group of polynomial constraints
// gated by an operation flag derived from the opcode bits of the trace.
//
// # Quick Start
//
// Executing a program and proving its trace:
//
//	program, err := vybiumstackprover.ParseProgram("push.2 push.3 add")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := vybiumstackprover.Execute(program, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	opts := vybiumstackprover.DefaultOptions()
//	opts.Backend = vybiumstackprover.BackendParallel
//	proof, err := vybiumstackprover.Prove(result.Trace, vybiumstackprover.PublicInputsFor(result), opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	data, err := vybiumstackprover.MarshalProof(proof)
//
// # Backends
//
// The compute-heavy steps (trace extension, constraint evaluation and Merkle
// hashing) run on one of three backends chosen at runtime:
//
// - BackendSequential: the calling goroutine
// - BackendParallel: a fork-join worker pool over disjoint row ranges
// - BackendGPU: an icicle device context, available in builds with the
// icicle tag
//
// All backends produce byte-identical proofs. A GPU that cannot be
// initialized fails with ErrResource unless Options.GPUFallback is set.
//
// # Errors
//
// Prove returns *Error values whose Code is one of ErrShape,
// ErrConstraintViolation, ErrResource or ErrTranscript. With
// Options.ValidateTrace set, a trace that breaks a constraint is rejected
// before proving and AsConstraintViolation names the constraint and row.
//
// # Architecture
//
// - pkg/vybium-stack-prover/: Public API (this package)
// - internal/vybium-stack-prover/: Private implementation (not importable)
//
// Implementation details in internal/ can be refactored without breaking the public API.
package vybiumstackprover
