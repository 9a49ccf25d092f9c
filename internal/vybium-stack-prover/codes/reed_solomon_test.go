package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

func TestNewReedSolomonCode(t *testing.T) {
	tests := []struct {
		name          string
		messageLength int
		blowup        int
		offset        field.Element
		wantErr       bool
	}{
		{"valid", 8, 4, field.New(7), false},
		{"smallest", 1, 2, field.New(7), false},
		{"message not power of two", 6, 4, field.New(7), true},
		{"empty message", 0, 4, field.New(7), true},
		{"blowup one", 8, 1, field.New(7), true},
		{"blowup not power of two", 8, 3, field.New(7), true},
		{"zero offset", 8, 4, field.Zero, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewReedSolomonCode(tt.messageLength, tt.blowup, tt.offset)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, rs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.messageLength*tt.blowup, rs.CodewordLength())
			assert.Equal(t, tt.messageLength-1, rs.MaxDegree())
		})
	}
}

func TestEncodeIsInCode(t *testing.T) {
	rs, err := NewReedSolomonCode(8, 4, field.New(7))
	require.NoError(t, err)

	message := make([]field.Element, 8)
	for i := range message {
		message[i] = field.New(uint64(i*i + 3))
	}
	codeword, err := rs.Encode(message)
	require.NoError(t, err)
	require.Len(t, codeword, 32)

	ok, err := rs.IsInCode(codeword)
	require.NoError(t, err)
	assert.True(t, ok)

	// a single changed symbol leaves the code
	corrupted := append([]field.Element(nil), codeword...)
	corrupted[5] = corrupted[5].Add(field.One)
	ok, err = rs.IsInCode(corrupted)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = rs.Encode(message[:4])
	assert.Error(t, err)
	_, err = rs.IsInCode(codeword[:16])
	assert.Error(t, err)
}

func TestEncodeAgreesWithMessageOnSubgroup(t *testing.T) {
	// with offset one, codeword index i*blowup is message row i
	rs, err := NewReedSolomonCode(16, 4, field.One)
	require.NoError(t, err)

	message := make([]field.Element, 16)
	for i := range message {
		message[i] = field.New(uint64(5*i + 2))
	}
	codeword, err := rs.Encode(message)
	require.NoError(t, err)
	for i := range message {
		assert.True(t, codeword[i*rs.Blowup()].Equal(message[i]), "row %d", i)
	}

	omega := rs.CodeGenerator()
	assert.True(t, omega.ModPow(uint64(rs.CodewordLength())).IsOne())
	assert.False(t, omega.ModPow(uint64(rs.CodewordLength()/2)).IsOne())
}

func TestDegree(t *testing.T) {
	const n = 8
	omega, err := core.RootOfUnity(n)
	require.NoError(t, err)

	zero := make([]field.Element, n)
	for i := range zero {
		zero[i] = field.Zero
	}
	d, err := Degree(zero)
	require.NoError(t, err)
	assert.Equal(t, -1, d)

	constant := make([]field.Element, n)
	for i := range constant {
		constant[i] = field.New(5)
	}
	d, err = Degree(constant)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	// x^3 over the subgroup
	cubic := make([]field.Element, n)
	x := field.One
	for i := range cubic {
		cubic[i] = x.ModPow(3)
		x = x.Mul(omega)
	}
	d, err = Degree(cubic)
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	_, err = Degree(cubic[:3])
	assert.Error(t, err)
}
