package vybiumstackprover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

func run(t *testing.T, text string, initial ...uint64) *ExecutionResult {
	t.Helper()
	program, err := ParseProgram(text)
	require.NoError(t, err)
	stack := make([]FieldElement, len(initial))
	for i, v := range initial {
		stack[i] = NewFieldElement(v)
	}
	result, err := Execute(program, stack)
	require.NoError(t, err)
	return result
}

func TestProve(t *testing.T) {
	result := run(t, "push.7 push.6 mul push.1 add", 3)
	inputs := PublicInputsFor(result)

	backends := []string{BackendSequential, BackendParallel}
	var encoded [][]byte
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Backend = backend
			proof, err := Prove(result.Trace, inputs, opts)
			require.NoError(t, err)

			data, err := MarshalProof(proof)
			require.NoError(t, err)
			encoded = append(encoded, data)

			decoded, err := UnmarshalProof(data)
			require.NoError(t, err)
			assert.Equal(t, proof.TraceLength, decoded.TraceLength)
		})
	}
	require.Len(t, encoded, 2)
	assert.Equal(t, encoded[0], encoded[1])
}

func TestProveProgram(t *testing.T) {
	program, err := ParseProgram("push.9 dup mul")
	require.NoError(t, err)

	var stages []Stage
	opts := DefaultOptions()
	opts.ValidateTrace = true
	opts.OnStage = func(s Stage) { stages = append(stages, s) }

	proof, result, err := ProveProgram(program, nil, opts)
	require.NoError(t, err)
	require.NotNil(t, proof)
	assert.Equal(t, uint64(81), result.FinalStack[0].Value())
	assert.Len(t, stages, NumStages)
}

func TestProveErrors(t *testing.T) {
	result := run(t, "push.2 push.3 add push.7 mul")
	inputs := PublicInputsFor(result)

	t.Run("short trace", func(t *testing.T) {
		_, err := Prove(vm.NewTrace(TraceWidth, 4), inputs, DefaultOptions())
		require.Error(t, err)
		assert.Equal(t, ErrShape, CodeOf(err))
		assert.True(t, errors.Is(err, &Error{Code: ErrShape}))
	})

	t.Run("corrupted trace", func(t *testing.T) {
		trace := result.Trace.Clone()
		col := vm.StackCol(0)
		trace.Set(2, col, trace.Get(2, col).Add(NewFieldElement(1)))

		opts := DefaultOptions()
		opts.ValidateTrace = true
		_, err := Prove(trace, inputs, opts)
		require.Error(t, err)
		assert.Equal(t, ErrConstraintViolation, CodeOf(err))
		v, ok := AsConstraintViolation(err)
		require.True(t, ok)
		assert.Equal(t, 1, v.Row)
		assert.Equal(t, 2, v.NextRow)

		err = ValidateTrace(trace, inputs)
		require.Error(t, err)
		v2, ok := AsConstraintViolation(err)
		require.True(t, ok)
		assert.Equal(t, v.Constraint, v2.Constraint)

		// without validation the trace is still proven
		_, err = Prove(trace, inputs, DefaultOptions())
		assert.NoError(t, err)
	})

	t.Run("gpu", func(t *testing.T) {
		if HasGPU {
			t.Skip("built with icicle")
		}
		opts := DefaultOptions()
		opts.Backend = BackendGPU
		_, err := Prove(result.Trace, inputs, opts)
		require.Error(t, err)
		assert.Equal(t, ErrResource, CodeOf(err))

		opts.GPUFallback = true
		_, err = Prove(result.Trace, inputs, opts)
		assert.NoError(t, err)
	})

	t.Run("bad proof bytes", func(t *testing.T) {
		_, err := UnmarshalProof([]byte("not a proof"))
		assert.Equal(t, ErrInvalidProof, CodeOf(err))
	})
}

func TestOptionsFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prover.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: cpu-parallel\nworkers: 2\nblowup_factor: 16\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, BackendParallel, opts.Backend)
	assert.Equal(t, 2, opts.Workers)

	result := run(t, "push.1 push.1 add")
	proof, err := Prove(result.Trace, PublicInputsFor(result), opts)
	require.NoError(t, err)
	assert.Equal(t, 16, proof.BlowupFactor)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, ErrInvalidConfig, CodeOf(err))
}
