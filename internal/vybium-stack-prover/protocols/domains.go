package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

// CosetOffset shifts the extension domain off the trace subgroup so that no
// zerofier vanishes on it
var CosetOffset = field.New(7)

// ArithmeticDomain is a coset of a multiplicative subgroup:
// {offset * generator^i : i = 0..length-1}. Lengths are powers of two.
type ArithmeticDomain struct {
	Offset    field.Element
	Generator field.Element
	Length    int
}

// NewArithmeticDomain creates a domain with the given length and no offset.
// The generator has order exactly length.
func NewArithmeticDomain(length int) (*ArithmeticDomain, error) {
	if !utils.IsPowerOfTwo(length) {
		return nil, fmt.Errorf("domain length must be a power of 2, got %d", length)
	}
	generator, err := core.RootOfUnity(length)
	if err != nil {
		return nil, err
	}
	return &ArithmeticDomain{
		Offset:    field.One,
		Generator: generator,
		Length:    length,
	}, nil
}

// WithOffset returns a new domain with the given offset
func (d *ArithmeticDomain) WithOffset(offset field.Element) *ArithmeticDomain {
	return &ArithmeticDomain{
		Offset:    offset,
		Generator: d.Generator,
		Length:    d.Length,
	}
}

// Halve returns the image of the domain under x -> x^2. Offset and
// generator are squared.
func (d *ArithmeticDomain) Halve() (*ArithmeticDomain, error) {
	if d.Length < 2 {
		return nil, fmt.Errorf("cannot halve domain of length %d", d.Length)
	}
	return &ArithmeticDomain{
		Offset:    d.Offset.Mul(d.Offset),
		Generator: d.Generator.Mul(d.Generator),
		Length:    d.Length / 2,
	}, nil
}

// Element returns offset * generator^i
func (d *ArithmeticDomain) Element(i int) field.Element {
	return d.Offset.Mul(d.Generator.ModPow(uint64(i)))
}

// Elements returns all domain points in order
func (d *ArithmeticDomain) Elements() []field.Element {
	return core.Powers(d.Offset, d.Generator, d.Length)
}

// Domains are the two domains of a session: the trace subgroup of size n
// and its coset extension of size n * blowup.
type Domains struct {
	Trace  *ArithmeticDomain
	LDE    *ArithmeticDomain
	Blowup int
}

// NewDomains derives the trace and extension domains for a trace length
func NewDomains(traceLength, blowup int) (*Domains, error) {
	if !utils.IsPowerOfTwo(blowup) {
		return nil, fmt.Errorf("blowup factor must be a power of 2, got %d", blowup)
	}
	lde, err := NewArithmeticDomain(traceLength * blowup)
	if err != nil {
		return nil, fmt.Errorf("failed to create extension domain: %w", err)
	}
	trace := &ArithmeticDomain{
		Offset:    field.One,
		Generator: lde.Generator.ModPow(uint64(blowup)),
		Length:    traceLength,
	}
	return &Domains{
		Trace:  trace,
		LDE:    lde.WithOffset(CosetOffset),
		Blowup: blowup,
	}, nil
}

// NextIndex returns the extension index of g*x for the point at index i
func (d *Domains) NextIndex(i int) int {
	return (i + d.Blowup) % d.LDE.Length
}

// LastRowPoint returns g^(n-1), the trace domain point of the last row
func (d *Domains) LastRowPoint() field.Element {
	return d.Trace.Generator.ModPow(uint64(d.Trace.Length - 1))
}
