package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

// inversionChunk bounds the slice each worker inverts in one batch
const inversionChunk = 1 << 12

// Zerofiers holds the inverted vanishing polynomials on the extension
// domain:
//
//	every row:       x^n - 1
//	transitions:     (x^n - 1) / (x - g^(n-1))
//	initial row:     x - 1
//	terminal row:    x - g^(n-1)
//
// x^n takes only blowup distinct values on the coset, so the first is
// stored once per residue class.
type Zerofiers struct {
	blowup   int
	everyInv []field.Element
	firstInv []field.Element
	lastInv  []field.Element
	lastDen  []field.Element
}

// NewZerofiers evaluates and inverts the zerofiers over the extension
// domain of d
func NewZerofiers(d *Domains, backend Backend) (*Zerofiers, error) {
	n := uint64(d.Trace.Length)
	size := d.LDE.Length
	xs := d.LDE.Elements()
	last := d.LastRowPoint()

	every := make([]field.Element, d.Blowup)
	for j := range every {
		every[j] = xs[j].ModPow(n).Sub(field.One)
	}
	everyInv, err := core.BatchInversion(every)
	if err != nil {
		return nil, fmt.Errorf("row zerofier: %w", err)
	}

	dens := make([]field.Element, 2*size)
	err = backend.ForEach(size, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			dens[j] = xs[j].Sub(field.One)
			dens[size+j] = xs[j].Sub(last)
		}
	})
	if err != nil {
		return nil, err
	}
	invs, err := core.ParallelBatchInversion(dens, inversionChunk, backend.ForEach)
	if err != nil {
		return nil, fmt.Errorf("boundary zerofier: %w", err)
	}

	return &Zerofiers{
		blowup:   d.Blowup,
		everyInv: everyInv,
		firstInv: invs[:size],
		lastInv:  invs[size:],
		lastDen:  dens[size:],
	}, nil
}

// Every returns 1 / (x_j^n - 1)
func (z *Zerofiers) Every(j int) field.Element {
	return z.everyInv[j%z.blowup]
}

// Transition returns (x_j - g^(n-1)) / (x_j^n - 1)
func (z *Zerofiers) Transition(j int) field.Element {
	return z.lastDen[j].Mul(z.Every(j))
}

// First returns 1 / (x_j - 1)
func (z *Zerofiers) First(j int) field.Element {
	return z.firstInv[j]
}

// Last returns 1 / (x_j - g^(n-1))
func (z *Zerofiers) Last(j int) field.Element {
	return z.lastInv[j]
}

// CompositionWeights returns how many random coefficients the composition
// consumes: one per transition constraint followed by one per boundary
// constraint.
func CompositionWeights(a air.AIR) int {
	return len(a.TransitionConstraints()) + len(a.BoundaryConstraints())
}

// EvaluateComposition combines every constraint into one codeword over the
// extension domain:
//
//	H(x) = sum_k alpha_k * C_k(x) / Z_k(x)
//
// where Z_k is the zerofier of the rows constraint k applies to. rows are
// the extended trace rows; the successor of point j is j + blowup.
func EvaluateComposition(a air.AIR, rows [][]field.Element, d *Domains, alphas []field.Element, backend Backend) ([]field.Element, error) {
	transition := a.TransitionConstraints()
	boundary := a.BoundaryConstraints()
	if len(alphas) != len(transition)+len(boundary) {
		return nil, fmt.Errorf("got %d composition weights for %d constraints",
			len(alphas), len(transition)+len(boundary))
	}
	if len(rows) != d.LDE.Length {
		return nil, fmt.Errorf("got %d extended rows, domain has %d points", len(rows), d.LDE.Length)
	}

	z, err := NewZerofiers(d, backend)
	if err != nil {
		return nil, err
	}

	composition := make([]field.Element, d.LDE.Length)
	err = backend.ForEach(d.LDE.Length, func(lo, hi int) {
		frame := &air.Frame{}
		for j := lo; j < hi; j++ {
			frame.Reset(rows[j], rows[d.NextIndex(j)])

			consistency, step := field.Zero, field.Zero
			for k, tc := range transition {
				term := tc.Eval(frame).Mul(alphas[k])
				if tc.Domain == air.Consistency {
					consistency = consistency.Add(term)
				} else {
					step = step.Add(term)
				}
			}

			first, last := field.Zero, field.Zero
			offset := len(transition)
			for k, bc := range boundary {
				term := bc.Eval(rows[j]).Mul(alphas[offset+k])
				if bc.Row == air.Initial {
					first = first.Add(term)
				} else {
					last = last.Add(term)
				}
			}

			composition[j] = consistency.Mul(z.Every(j)).
				Add(step.Mul(z.Transition(j))).
				Add(first.Mul(z.First(j))).
				Add(last.Mul(z.Last(j)))
		}
	})
	if err != nil {
		return nil, err
	}
	return composition, nil
}
