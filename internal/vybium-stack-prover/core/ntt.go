package core

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/consensys/gnark-crypto/field/goldilocks/fft"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// domainKey identifies a cached FFT domain by size and coset shift
type domainKey struct {
	size  uint64
	shift uint64
}

var domainCache sync.Map

// fftDomain returns the precomputed gnark domain of the given size. All
// domains are drawn from one tower of roots, so the generator of size n is
// the (N/n)-th power of the generator of size N.
func fftDomain(size int, shift field.Element) *fft.Domain {
	key := domainKey{size: uint64(size), shift: shift.Value()}
	if d, ok := domainCache.Load(key); ok {
		return d.(*fft.Domain)
	}
	var s goldilocks.Element
	s.SetUint64(key.shift)
	d, _ := domainCache.LoadOrStore(key, fft.NewDomain(key.size, fft.WithShift(s)))
	return d.(*fft.Domain)
}

// RootOfUnity returns the generator of the multiplicative subgroup of order
// n. n must be a power of two no larger than 2^32.
func RootOfUnity(n int) (field.Element, error) {
	if n <= 0 || n&(n-1) != 0 {
		return field.Zero, fmt.Errorf("subgroup order must be a power of two, got %d", n)
	}
	g, err := fft.Generator(uint64(n))
	if err != nil {
		return field.Zero, fmt.Errorf("no root of unity of order %d: %w", n, err)
	}
	root := field.New(g.Uint64())
	if n > 1 && !field.IsPrimitiveRootOfUnity(root, uint64(n)) {
		return field.Zero, fmt.Errorf("generator %s does not have order %d", root, n)
	}
	return root, nil
}

// ToGoldilocks converts elements into gnark's representation through their
// canonical values
func ToGoldilocks(values []field.Element) []goldilocks.Element {
	out := make([]goldilocks.Element, len(values))
	for i, v := range values {
		out[i].SetUint64(v.Value())
	}
	return out
}

// FromGoldilocks writes gnark elements back into dst
func FromGoldilocks(dst []field.Element, values []goldilocks.Element) {
	for i := range values {
		dst[i] = field.New(values[i].Uint64())
	}
}

func checkLength(n int) error {
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("length must be a power of two, got %d", n)
	}
	return nil
}

// NTT evaluates the polynomial with the given coefficients over the
// subgroup of order len(values), in place. Output is in natural order:
// values[i] = p(ω^i) with ω = RootOfUnity(len(values)).
func NTT(values []field.Element) error {
	n := len(values)
	if err := checkLength(n); err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	a := ToGoldilocks(values)
	fftDomain(n, field.One).FFT(a, fft.DIF, fft.WithNbTasks(1))
	fft.BitReverse(a)
	FromGoldilocks(values, a)
	return nil
}

// INTT interpolates natural-order evaluations over the subgroup of order
// len(values) back into coefficients, in place.
func INTT(values []field.Element) error {
	n := len(values)
	if err := checkLength(n); err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	a := ToGoldilocks(values)
	fftDomain(n, field.One).FFTInverse(a, fft.DIF, fft.WithNbTasks(1))
	fft.BitReverse(a)
	FromGoldilocks(values, a)
	return nil
}

// CosetLDE extends a column given by its evaluations over the subgroup of
// order len(column) to the coset offset·<ω> of order len(column)·blowup.
// The trace subgroup is the blowup-th power of the extension subgroup, so
// row i sits at extension index i·blowup.
func CosetLDE(column []field.Element, offset field.Element, blowup int) ([]field.Element, error) {
	n := len(column)
	if err := checkLength(n); err != nil {
		return nil, fmt.Errorf("column %w", err)
	}
	if blowup <= 0 || blowup&(blowup-1) != 0 {
		return nil, fmt.Errorf("blowup factor must be a power of two, got %d", blowup)
	}
	if offset.IsZero() {
		return nil, fmt.Errorf("coset offset cannot be zero")
	}

	coeffs := ToGoldilocks(column)
	if n > 1 {
		fftDomain(n, field.One).FFTInverse(coeffs, fft.DIF, fft.WithNbTasks(1))
		fft.BitReverse(coeffs)
	}

	size := n * blowup
	extended := make([]goldilocks.Element, size)
	copy(extended, coeffs)
	if size == 1 {
		out := make([]field.Element, 1)
		FromGoldilocks(out, extended)
		return out, nil
	}
	fftDomain(size, offset).FFT(extended, fft.DIF, fft.OnCoset(), fft.WithNbTasks(1))
	fft.BitReverse(extended)

	out := make([]field.Element, size)
	FromGoldilocks(out, extended)
	return out, nil
}

// Powers returns base^0 .. base^(n-1) scaled by start
func Powers(start, base field.Element, n int) []field.Element {
	out := make([]field.Element, n)
	cur := start
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = cur.Mul(base)
	}
	return out
}
