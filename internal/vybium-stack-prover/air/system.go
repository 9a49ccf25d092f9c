package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// systemConstraints hold for every opcode: opcode bits are binary, exactly
// one flag is set, reserved opcodes never run, and the clock, depth and
// program digest columns advance consistently.
func systemConstraints() []TransitionConstraint {
	constraints := make([]TransitionConstraint, 0, vm.NumFamilies+vm.NumSelectors+8)

	for i := 0; i < vm.NumFamilies; i++ {
		col := vm.FamCol(i)
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("system.fam%d_binary", i),
			Group:  GroupSystem,
			Domain: Consistency,
			Degree: 2,
			Eval:   func(f *Frame) field.Element { return binary(f.Current[col]) },
		})
	}
	for i := 0; i < vm.NumSelectors; i++ {
		col := vm.SelCol(i)
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("system.sel%d_binary", i),
			Group:  GroupSystem,
			Domain: Consistency,
			Degree: 2,
			Eval:   func(f *Frame) field.Element { return binary(f.Current[col]) },
		})
	}

	constraints = append(constraints, TransitionConstraint{
		Name:   "system.flags_sum_to_one",
		Group:  GroupSystem,
		Domain: Consistency,
		Degree: 2,
		Eval:   func(f *Frame) field.Element { return f.Flags.Total().Sub(field.One) },
	})

	for _, r := range vm.Reserved {
		op := r
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("system.reserved%d_unused", op),
			Group:  GroupSystem,
			Domain: Consistency,
			Degree: 2,
			Eval:   func(f *Frame) field.Element { return f.Flag(op) },
		})
	}

	// Only push reads the immediate, so it must be zero elsewhere for the
	// digest to bind the program text
	constraints = append(constraints, TransitionConstraint{
		Name:   "system.immediate_push_only",
		Group:  GroupSystem,
		Domain: Consistency,
		Degree: 3,
		Eval: func(f *Frame) field.Element {
			return f.Current[vm.ColImm].Mul(field.One.Sub(f.Flag(vm.Push)))
		},
	})

	constraints = append(constraints,
		TransitionConstraint{
			Name:   "system.clock_increment",
			Group:  GroupSystem,
			Domain: Transition,
			Degree: 1,
			Eval: func(f *Frame) field.Element {
				return f.Next[vm.ColClk].Sub(f.Current[vm.ColClk]).Sub(field.One)
			},
		},
		TransitionConstraint{
			Name:   "system.depth_update",
			Group:  GroupSystem,
			Domain: Transition,
			Degree: 2,
			Eval: func(f *Frame) field.Element {
				delta := field.Zero
				for op, effect := range stackEffects {
					if effect.IsZero() {
						continue
					}
					delta = delta.Add(f.Flags[op].Mul(effect))
				}
				return f.Next[vm.ColDepth].Sub(f.Current[vm.ColDepth]).Sub(delta)
			},
		},
		TransitionConstraint{
			Name:   "system.digest_fold",
			Group:  GroupSystem,
			Domain: Transition,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				dig := f.Current[vm.ColDigest]
				step := dig.Mul(digestMultiplierMinusOne).
					Add(OpcodeValue(f.Current)).
					Add(field.One).
					Add(f.Current[vm.ColImm].Mul(vm.DigestImmWeight))
				active := field.One.Sub(f.Flag(vm.Halt))
				return f.Next[vm.ColDigest].Sub(dig).Sub(active.Mul(step))
			},
		},
	)
	return constraints
}

var digestMultiplierMinusOne = vm.DigestMultiplier.Sub(field.One)

// stackEffects holds each opcode's depth change as a field element,
// indexed by opcode
var stackEffects = func() []field.Element {
	out := make([]field.Element, vm.NumOpcodes)
	for i := range out {
		out[i] = field.Zero
	}
	for op, info := range vm.AllInstructions {
		switch {
		case info.StackEffect > 0:
			out[op] = field.New(uint64(info.StackEffect))
		case info.StackEffect < 0:
			out[op] = field.New(uint64(-info.StackEffect)).Neg()
		}
	}
	return out
}()
