package protocols

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

func TestProofRoundTrip(t *testing.T) {
	trace, inputs := execute(t, "push.2 push.3 add push.7 mul", []uint64{1, 2, 3})
	proof, err := Prove(trace, inputs, DefaultOptions())
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	var decoded Proof
	require.NoError(t, decoded.UnmarshalBinary(data))

	again, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	assert.Equal(t, proof.TraceLength, decoded.TraceLength)
	assert.Equal(t, proof.BlowupFactor, decoded.BlowupFactor)
	assert.True(t, core.DigestEqual(proof.TraceRoot, decoded.TraceRoot))
	assert.True(t, decoded.PublicInputs.ProgramDigest.Equal(inputs.ProgramDigest))
	require.Len(t, decoded.PublicInputs.InitialStack, 3)
	require.Len(t, decoded.Queries, len(proof.Queries))

	q := decoded.Queries[0]
	assert.True(t, core.VerifyProof(decoded.TraceRoot, core.HashLeaf(q.Row), q.RowPath, q.Position))
}

func TestProofDecodeErrors(t *testing.T) {
	trace, inputs := execute(t, "push.1 push.2 add", nil)
	proof, err := Prove(trace, inputs, DefaultOptions())
	require.NoError(t, err)
	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	reencode := func(t *testing.T, mutate func(w *wireProof)) []byte {
		t.Helper()
		var w wireProof
		require.NoError(t, cbor.Unmarshal(data, &w))
		mutate(&w)
		out, err := proofEncMode.Marshal(&w)
		require.NoError(t, err)
		return out
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"garbage", []byte{0xff, 0x00, 0x13}, "failed to decode proof"},
		{"version", reencode(t, func(w *wireProof) { w.Version = 7 }), "unsupported proof version"},
		{"non-canonical element", reencode(t, func(w *wireProof) { w.Remainder[0] = field.P }), "remainder"},
		{"short digest", reencode(t, func(w *wireProof) { w.TraceRoot = w.TraceRoot[:2] }), "trace root"},
		{"non-canonical root", reencode(t, func(w *wireProof) { w.CompositionRoot[0] = field.P + 1 }), "composition root"},
		{"non-canonical path node", reencode(t, func(w *wireProof) { w.Queries[0].RowPath[0].Hash[1] = field.P }), "row path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Proof
			err := p.UnmarshalBinary(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("missing public inputs", func(t *testing.T) {
		_, err := (&Proof{}).MarshalBinary()
		assert.Error(t, err)
	})
}
