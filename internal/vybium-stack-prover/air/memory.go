package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// memoryConstraints covers mload and mstore over the register-file memory.
// The address in st0 is one-hot encoded in h0..h3. Memory cells only change
// on mstore, which writes st1 to the addressed cell.
func memoryConstraints() []TransitionConstraint {
	load := func(f *Frame) field.Element {
		acc := field.Zero
		for i := 0; i < vm.MemorySize; i++ {
			acc = acc.Add(f.H(i).Mul(f.Mem(i)))
		}
		return acc
	}

	rules := []slotRule{
		{vm.MLoad, with(keep, load), degrees(2)},
		{vm.MStore, shiftLeft(2), degrees()},
	}
	constraints := slotConstraints(GroupMemory, rules)

	access := func(f *Frame) field.Element { return f.Flags.Sum(vm.MLoad, vm.MStore) }

	for i := 0; i < vm.MemorySize; i++ {
		cell := i
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("memory.addr%d_binary", cell),
			Group:  GroupMemory,
			Domain: Consistency,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				return access(f).Mul(binary(f.H(cell)))
			},
		})
	}

	constraints = append(constraints,
		TransitionConstraint{
			Name:   "memory.addr_one_hot",
			Group:  GroupMemory,
			Domain: Consistency,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				sum := field.Zero
				for i := 0; i < vm.MemorySize; i++ {
					sum = sum.Add(f.H(i))
				}
				return access(f).Mul(sum.Sub(field.One))
			},
		},
		TransitionConstraint{
			Name:   "memory.addr_value",
			Group:  GroupMemory,
			Domain: Consistency,
			Degree: 3,
			Eval: func(f *Frame) field.Element {
				addr := field.Zero
				for i := 1; i < vm.MemorySize; i++ {
					addr = addr.Add(field.New(uint64(i)).Mul(f.H(i)))
				}
				return access(f).Mul(f.St(0).Sub(addr))
			},
		},
	)

	for i := 0; i < vm.MemorySize; i++ {
		cell := i
		constraints = append(constraints, TransitionConstraint{
			Name:   fmt.Sprintf("memory.mem%d_update", cell),
			Group:  GroupMemory,
			Domain: Transition,
			Degree: 4,
			Eval: func(f *Frame) field.Element {
				cur := f.Mem(cell)
				write := f.Flag(vm.MStore).Mul(f.H(cell)).Mul(f.St(1).Sub(cur))
				return f.Next[vm.MemCol(cell)].Sub(cur).Sub(write)
			},
		})
	}
	return constraints
}
