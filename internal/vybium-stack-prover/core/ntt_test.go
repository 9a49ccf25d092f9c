package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func evalPoly(coeffs []field.Element, x field.Element) field.Element {
	acc := field.Zero
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}

func TestRootOfUnity(t *testing.T) {
	tests := []struct {
		name    string
		order   int
		wantErr bool
	}{
		{"order 1", 1, false},
		{"order 2", 2, false},
		{"order 8", 8, false},
		{"order 2^20", 1 << 20, false},
		{"order 2^32", 1 << 32, false},
		{"zero", 0, true},
		{"not power of two", 12, true},
		{"beyond two-adicity", 1 << 33, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := RootOfUnity(tt.order)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, root.ModPow(uint64(tt.order)).IsOne())
			if tt.order > 1 {
				assert.False(t, root.ModPow(uint64(tt.order/2)).IsOne())
			}
		})
	}

	// roots of smaller subgroups are powers of the larger ones
	wide, err := RootOfUnity(64)
	require.NoError(t, err)
	narrow, err := RootOfUnity(8)
	require.NoError(t, err)
	assert.True(t, wide.ModPow(8).Equal(narrow))
}

func TestNTT(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"size 1", 1},
		{"size 2", 2},
		{"size 8", 8},
		{"size 64", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coeffs := make([]field.Element, tt.size)
			for i := range coeffs {
				coeffs[i] = field.New(uint64(i*i + 7))
			}
			omega, err := RootOfUnity(tt.size)
			require.NoError(t, err)

			values := append([]field.Element(nil), coeffs...)
			require.NoError(t, NTT(values))
			x := field.One
			for i := range values {
				assert.True(t, values[i].Equal(evalPoly(coeffs, x)), "point %d", i)
				x = x.Mul(omega)
			}

			require.NoError(t, INTT(values))
			for i := range values {
				assert.True(t, values[i].Equal(coeffs[i]), "coefficient %d", i)
			}
		})
	}

	assert.Error(t, NTT(make([]field.Element, 6)))
	assert.Error(t, INTT(nil))
}

func TestCosetLDE(t *testing.T) {
	const n, blowup = 8, 4
	ldeOmega, err := RootOfUnity(n * blowup)
	require.NoError(t, err)
	offset := field.New(7)

	column := make([]field.Element, n)
	for i := range column {
		column[i] = field.New(uint64(3*i + 1))
	}

	lde, err := CosetLDE(column, offset, blowup)
	require.NoError(t, err)
	require.Len(t, lde, n*blowup)

	coeffs := append([]field.Element(nil), column...)
	require.NoError(t, INTT(coeffs))
	x := offset
	for j := range lde {
		assert.True(t, lde[j].Equal(evalPoly(coeffs, x)), "lde point %d", j)
		x = x.Mul(ldeOmega)
	}

	// without an offset, row i lands on extension index i*blowup
	plain, err := CosetLDE(column, field.One, blowup)
	require.NoError(t, err)
	for i := range column {
		assert.True(t, plain[i*blowup].Equal(column[i]), "row %d", i)
	}

	_, err = CosetLDE(column[:3], offset, blowup)
	assert.Error(t, err)
	_, err = CosetLDE(column, offset, 3)
	assert.Error(t, err)
	_, err = CosetLDE(column, field.Zero, blowup)
	assert.Error(t, err)
}

func TestBatchInversion(t *testing.T) {
	values := []field.Element{field.New(2), field.New(5), field.New(1 << 40), field.New(field.P - 1)}
	inv, err := BatchInversion(values)
	require.NoError(t, err)
	for i := range values {
		assert.True(t, values[i].Mul(inv[i]).IsOne(), "index %d", i)
	}

	chunked, err := ParallelBatchInversion(values, 1, chunkedRunner)
	require.NoError(t, err)
	for i := range values {
		assert.True(t, chunked[i].Equal(inv[i]))
	}

	empty, err := BatchInversion(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = BatchInversion([]field.Element{field.One, field.Zero})
	assert.ErrorContains(t, err, "index 1")
}
