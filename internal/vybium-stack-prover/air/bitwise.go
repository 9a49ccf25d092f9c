package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// bitwiseConstraints covers the u8 family. The left operand (st0) is
// decomposed into h0..h7 and the right operand (st1) into h8..h15, least
// significant bit first. u8shr only uses the left decomposition.
func bitwiseConstraints() []TransitionConstraint {
	combine := func(op func(a, b field.Element) field.Element) func(f *Frame) field.Element {
		return func(f *Frame) field.Element {
			acc := field.Zero
			for k := 0; k < 8; k++ {
				acc = acc.Add(powersOfTwo[k].Mul(op(f.H(k), f.H(8+k))))
			}
			return acc
		}
	}
	and := func(a, b field.Element) field.Element { return a.Mul(b) }
	or := func(a, b field.Element) field.Element { return a.Add(b).Sub(a.Mul(b)) }
	xor := func(a, b field.Element) field.Element { return a.Add(b).Sub(a.Mul(b).Add(a.Mul(b))) }
	shr := func(f *Frame) field.Element {
		acc := field.Zero
		for k := 1; k < 8; k++ {
			acc = acc.Add(powersOfTwo[k-1].Mul(f.H(k)))
		}
		return acc
	}

	rules := []slotRule{
		{vm.U8And, with(shiftLeft(1), combine(and)), degrees(2)},
		{vm.U8Or, with(shiftLeft(1), combine(or)), degrees(2)},
		{vm.U8Xor, with(shiftLeft(1), combine(xor)), degrees(2)},
		{vm.U8Shr, with(keep, shr), degrees()},
	}
	constraints := slotConstraints(GroupBitwise, rules)

	binaryOps := []vm.Instruction{vm.U8And, vm.U8Or, vm.U8Xor}
	leftOps := []vm.Instruction{vm.U8And, vm.U8Or, vm.U8Xor, vm.U8Shr}

	for k := 0; k < 16; k++ {
		bit := k
		ops := leftOps
		if bit >= 8 {
			ops = binaryOps
		}
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("bitwise.h%d_binary", bit),
			Group:  GroupBitwise,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flags.Sum(ops...).Mul(binary(f.H(bit)))
			},
		})
	}

	constraints = append(constraints,
		TransitionConstraint{
			Name:   "bitwise.lhs_decomposition",
			Group:  GroupBitwise,
			Domain: Consistency,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				return f.Flags.Sum(leftOps...).Mul(f.St(0).Sub(recompose(f, 0)))
			},
		},
		TransitionConstraint{
			Name:   "bitwise.rhs_decomposition",
			Group:  GroupBitwise,
			Domain: Consistency,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				return f.Flags.Sum(binaryOps...).Mul(f.St(1).Sub(recompose(f, 8)))
			},
		},
	)
	return constraints
}
