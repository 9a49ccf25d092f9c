package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

func arithmeticConstraints() []TransitionConstraint {
	rules := []slotRule{
		{vm.Add, with(shiftLeft(1), func(f *Frame) field.Element { return f.St(0).Add(f.St(1)) }), degrees()},
		{vm.Mul, with(shiftLeft(1), func(f *Frame) field.Element { return f.St(0).Mul(f.St(1)) }), degrees(2)},
		{vm.Neg, with(keep, func(f *Frame) field.Element { return f.St(0).Neg() }), degrees()},
		// the inverse is pinned by inv_product below
		{vm.Inv, with(keep, nil), degrees()},
	}
	constraints := slotConstraints(GroupArithmetic, rules)

	constraints = append(constraints, TransitionConstraint{
		Name:   "arithmetic.inv_product",
		Group:  GroupArithmetic,
		Domain: Transition,
		Degree: 4,
		Eval: func(f *Frame) field.Element {
			return f.Flag(vm.Inv).Mul(f.St(0).Mul(f.NextSt(0)).Sub(field.One))
		},
	})
	return constraints
}
