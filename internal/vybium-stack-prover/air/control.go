package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// controlConstraints covers nop, halt and the two flow-selection opcodes.
// cswap pops c and swaps the next two registers when c = 1; cdrop pops
// c, b, a and keeps b when c = 1, a otherwise.
func controlConstraints() []TransitionConstraint {
	// s1 + c*(s2 - s1)
	selectSecond := func(f *Frame) field.Element {
		return f.St(1).Add(f.St(0).Mul(f.St(2).Sub(f.St(1))))
	}
	// s2 + c*(s1 - s2)
	selectThird := func(f *Frame) field.Element {
		return f.St(2).Add(f.St(0).Mul(f.St(1).Sub(f.St(2))))
	}

	rules := []slotRule{
		{vm.Nop, keep, degrees()},
		{vm.Halt, keep, degrees()},
		{vm.CSwap, with(shiftLeft(1), selectSecond, selectThird), degrees(2, 2)},
		{vm.CDrop, with(shiftLeft(2), selectThird), degrees(2)},
	}
	constraints := slotConstraints(GroupControl, rules)

	constraints = append(constraints,
		TransitionConstraint{
			Name:   "control.cswap_condition_binary",
			Group:  GroupControl,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.CSwap).Mul(binary(f.St(0)))
			},
		},
		TransitionConstraint{
			Name:   "control.cdrop_condition_binary",
			Group:  GroupControl,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.CDrop).Mul(binary(f.St(0)))
			},
		},
		TransitionConstraint{
			Name:   "control.halt_absorbing",
			Group:  GroupControl,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				nextHalt := f.Next[vm.FamCol(vm.Halt.Family())].Mul(f.Next[vm.SelCol(vm.Halt.Selector())])
				return f.Flag(vm.Halt).Mul(field.One.Sub(nextHalt))
			},
		},
	)
	return constraints
}
