package vybiumstackprover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgram(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		program, err := ParseProgram("push.4 # four\npush.5 add")
		require.NoError(t, err)
		assert.Equal(t, 3, program.Len())
	})

	t.Run("unknown mnemonic", func(t *testing.T) {
		_, err := ParseProgram("push.1 frobnicate")
		require.Error(t, err)
		assert.Equal(t, ErrInvalidInput, CodeOf(err))
	})
}

func TestExecute(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		program, err := ParseProgram("push.2 push.3 add")
		require.NoError(t, err)
		result, err := Execute(program, nil)
		require.NoError(t, err)

		assert.Equal(t, TraceWidth, result.Trace.Width())
		assert.Equal(t, 8, result.Trace.Length())
		require.Len(t, result.FinalStack, 1)
		assert.Equal(t, uint64(5), result.FinalStack[0].Value())

		inputs := PublicInputsFor(result)
		assert.True(t, inputs.ProgramDigest.Equal(ProgramDigest(program)))
		assert.NoError(t, ValidateTrace(result.Trace, inputs))
	})

	t.Run("minimum length", func(t *testing.T) {
		program, err := ParseProgram("push.1")
		require.NoError(t, err)
		result, err := ExecuteWithLength(program, nil, 32)
		require.NoError(t, err)
		assert.Equal(t, 32, result.Trace.Length())
	})

	t.Run("failure", func(t *testing.T) {
		program, err := ParseProgram("add")
		require.NoError(t, err)
		_, err = Execute(program, nil)
		require.Error(t, err)
		assert.Equal(t, ErrVMExecution, CodeOf(err))
	})

	t.Run("nil program", func(t *testing.T) {
		_, err := Execute(nil, nil)
		assert.Equal(t, ErrInvalidInput, CodeOf(err))
	})
}
