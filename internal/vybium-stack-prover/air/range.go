package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// rangeConstraints covers u8check: st0 must equal the value of eight
// binary helpers, which bounds it below 256. The stack is unchanged.
func rangeConstraints() []TransitionConstraint {
	constraints := slotConstraints(GroupRange, []slotRule{
		{vm.U8Check, keep, degrees()},
	})

	for k := 0; k < 8; k++ {
		bit := k
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("range.h%d_binary", bit),
			Group:  GroupRange,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return f.Flag(vm.U8Check).Mul(binary(f.H(bit)))
			},
		})
	}

	constraints = append(constraints, TransitionConstraint{
		Name:   "range.decomposition",
		Group:  GroupRange,
		Domain: Consistency,
		Degree: 3,
		Eval: func(f *Frame) field.Element {
			return f.Flag(vm.U8Check).Mul(f.St(0).Sub(recompose(f, 0)))
		},
	})
	return constraints
}
