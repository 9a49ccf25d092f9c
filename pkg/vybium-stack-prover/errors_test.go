package vybiumstackprover

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/protocols"
)

func TestErrors(t *testing.T) {
	t.Run("Is matches by code", func(t *testing.T) {
		err := &Error{Code: ErrShape, Message: "bad trace"}
		assert.True(t, errors.Is(err, &Error{Code: ErrShape}))
		assert.False(t, errors.Is(err, &Error{Code: ErrResource}))
	})

	t.Run("message includes cause", func(t *testing.T) {
		err := &Error{Code: ErrVMExecution, Message: "run failed", Cause: errors.New("stack underflow")}
		assert.Equal(t, "vybium-stack-prover error [vm execution]: run failed (caused by: stack underflow)", err.Error())
		assert.Equal(t, "vybium-stack-prover error [shape]: x", (&Error{Code: ErrShape, Message: "x"}).Error())
		assert.Equal(t, "code 99", ErrorCode(99).String())
	})
}

func TestWrapProverError(t *testing.T) {
	tests := []struct {
		sentinel *protocols.ProverError
		want     ErrorCode
	}{
		{protocols.ErrShape, ErrShape},
		{protocols.ErrConstraintViolation, ErrConstraintViolation},
		{protocols.ErrResource, ErrResource},
		{protocols.ErrTranscript, ErrTranscript},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			inner := &protocols.ProverError{Kind: tt.sentinel.Kind, Message: "inner"}
			err := wrapProverError(inner)
			require.Error(t, err)
			assert.Equal(t, tt.want, CodeOf(err))
			assert.True(t, errors.Is(err, tt.sentinel), "internal kind stays reachable")
		})
	}

	assert.NoError(t, wrapProverError(nil))
	assert.Equal(t, ErrUnknown, CodeOf(wrapProverError(errors.New("plain"))))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
}
