package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// stackConstraints covers the stack growth and permutation families:
// push, pad, dup, over, drop, swap and rot.
func stackConstraints() []TransitionConstraint {
	rules := []slotRule{
		{vm.Push, with(shiftRight, func(f *Frame) field.Element { return f.Current[vm.ColImm] }), degrees()},
		{vm.Pad, with(shiftRight, func(*Frame) field.Element { return field.Zero }), degrees()},
		{vm.Dup, with(shiftRight, st(0)), degrees()},
		{vm.Over, with(shiftRight, st(1)), degrees()},
		{vm.Drop, shiftLeft(1), degrees()},
		{vm.Swap, with(keep, st(1), st(0)), degrees()},
		{vm.Rot, with(keep, st(2), st(0), st(1)), degrees()},
	}
	constraints := slotConstraints(GroupStack, rules)

	// A push into a full register file would silently drop st15
	constraints = append(constraints, TransitionConstraint{
		Name:   "stack.no_overflow",
		Group:  GroupStack,
		Domain: Consistency,
		Degree: 3,
		Eval: func(f *Frame) field.Element {
			return f.Flags.Sum(vm.Push, vm.Pad, vm.Dup, vm.Over).Mul(f.St(vm.StackDepth - 1))
		},
	})
	return constraints
}
