package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// comparisonConstraints covers eq, eqz, not and assert. eq and eqz use h0
// as the inverse of the tested value when it is non-zero: r = 1 - x*h0
// together with x*r = 0 forces r to be the zero test of x.
func comparisonConstraints() []TransitionConstraint {
	rules := []slotRule{
		{vm.Eq, with(shiftLeft(1), nil), degrees()},
		{vm.Eqz, with(keep, nil), degrees()},
		{vm.Not, with(keep, func(f *Frame) field.Element { return field.One.Sub(f.St(0)) }), degrees()},
		{vm.Assert, shiftLeft(1), degrees()},
	}
	constraints := slotConstraints(GroupComparison, rules)

	diff := func(f *Frame) field.Element { return f.St(0).Sub(f.St(1)) }

	constraints = append(constraints,
		TransitionConstraint{
			Name:   "comparison.eq_result",
			Group:  GroupComparison,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Eq).Mul(f.NextSt(0).Sub(field.One).Add(diff(f).Mul(f.H(0))))
			},
		},
		TransitionConstraint{
			Name:   "comparison.eq_zero_test",
			Group:  GroupComparison,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Eq).Mul(diff(f).Mul(f.NextSt(0)))
			},
		},
		TransitionConstraint{
			Name:   "comparison.eqz_result",
			Group:  GroupComparison,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Eqz).Mul(f.NextSt(0).Sub(field.One).Add(f.St(0).Mul(f.H(0))))
			},
		},
		TransitionConstraint{
			Name:   "comparison.eqz_zero_test",
			Group:  GroupComparison,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Eqz).Mul(f.St(0).Mul(f.NextSt(0)))
			},
		},
		TransitionConstraint{
			Name:   "comparison.not_operand_binary",
			Group:  GroupComparison,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Not).Mul(binary(f.St(0)))
			},
		},
		TransitionConstraint{
			Name:   "comparison.assert_one",
			Group:  GroupComparison,
			Domain: Consistency,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.Assert).Mul(f.St(0).Sub(field.One))
			},
		},
	)
	return constraints
}
