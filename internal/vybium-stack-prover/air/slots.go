package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// slotFn returns the value stack register i must hold on the next row. The
// second result is false when the group fixes that register through a
// dedicated constraint instead. Branching is on the register index only,
// never on trace values.
type slotFn func(f *Frame, i int) (field.Element, bool)

// slotRule is one opcode's effect on the stack registers
type slotRule struct {
	op   vm.Instruction
	next slotFn
	// degree of the expected value at register i
	degree func(i int) int
}

func keep(f *Frame, i int) (field.Element, bool) {
	return f.St(i), true
}

// shiftLeft moves deeper registers up by k, filling the bottom with zero
func shiftLeft(k int) slotFn {
	return func(f *Frame, i int) (field.Element, bool) {
		if i+k < vm.StackDepth {
			return f.St(i + k), true
		}
		return field.Zero, true
	}
}

// shiftRight moves every register down by one; register 0 must be
// overridden
func shiftRight(f *Frame, i int) (field.Element, bool) {
	return f.St(i - 1), true
}

// with overrides the leading registers. A nil override leaves the register
// to another constraint.
func with(base slotFn, top ...func(f *Frame) field.Element) slotFn {
	return func(f *Frame, i int) (field.Element, bool) {
		if i < len(top) {
			if top[i] == nil {
				return field.Zero, false
			}
			return top[i](f), true
		}
		return base(f, i)
	}
}

// degrees returns d[i] for the leading registers and 1 for the rest
func degrees(d ...int) func(i int) int {
	return func(i int) int {
		if i < len(d) {
			return d[i]
		}
		return 1
	}
}

func st(i int) func(f *Frame) field.Element {
	return func(f *Frame) field.Element { return f.St(i) }
}

// slotConstraints builds one transition constraint per stack register:
// sum over the group's opcodes of flag_op * (next_i - expected_op,i).
// Flags are exclusive, so on a valid row exactly one term is live.
func slotConstraints(group Group, rules []slotRule) []TransitionConstraint {
	constraints := make([]TransitionConstraint, 0, vm.StackDepth)
	for i := 0; i < vm.StackDepth; i++ {
		slot := i
		deg := 1
		for _, r := range rules {
			if d := r.degree(slot); d > deg {
				deg = d
			}
		}
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("%s.st%d", group, slot),
			Group:  group,
			Domain: Transition,
			Degree: 2 + deg,
			Eval: func(f *Frame) field.Element {
				next := f.NextSt(slot)
				acc := field.Zero
				for _, r := range rules {
					expected, ok := r.next(f, slot)
					if !ok {
						continue
					}
					acc = acc.Add(f.Flag(r.op).Mul(next.Sub(expected)))
				}
				return acc
			},
		})
	}
	return constraints
}

// binary is x(x-1), which vanishes exactly on {0, 1}
func binary(x field.Element) field.Element {
	return x.Mul(x.Sub(field.One))
}

var powersOfTwo = func() [16]field.Element {
	var out [16]field.Element
	for k := range out {
		out[k] = field.New(uint64(1) << k)
	}
	return out
}()

// recompose returns sum 2^k * h_{offset+k} over eight helpers
func recompose(f *Frame, offset int) field.Element {
	acc := field.Zero
	for k := 0; k < 8; k++ {
		acc = acc.Add(powersOfTwo[k].Mul(f.H(offset + k)))
	}
	return acc
}
