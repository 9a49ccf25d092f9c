package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// pin returns a degree-1 constraint col = value
func pin(name string, row BoundaryRow, col int, value field.Element) BoundaryConstraint {
	return BoundaryConstraint{
		Name:   name,
		Row:    row,
		Degree: 1,
		Eval:   func(r []field.Element) field.Element { return r[col].Sub(value) },
	}
}

// boundaryConstraints pins the first row to the initial machine state and
// the last row to the final stack, the program digest and a closed state:
// halted, with every helper column empty.
func boundaryConstraints(inputs *PublicInputs) []BoundaryConstraint {
	constraints := make([]BoundaryConstraint, 0, 2*vm.StackDepth+vm.MemorySize+vm.NumHelpers+6)

	constraints = append(constraints,
		pin("initial.clk", Initial, vm.ColClk, field.Zero),
		pin("initial.dig", Initial, vm.ColDigest, field.Zero),
		pin("initial.depth", Initial, vm.ColDepth, field.New(uint64(len(inputs.InitialStack)))),
	)
	for i := 0; i < vm.StackDepth; i++ {
		constraints = append(constraints,
			pin(fmt.Sprintf("initial.st%d", i), Initial, vm.StackCol(i), stackRegister(inputs.InitialStack, i)))
	}
	for i := 0; i < vm.MemorySize; i++ {
		constraints = append(constraints,
			pin(fmt.Sprintf("initial.mem%d", i), Initial, vm.MemCol(i), field.Zero))
	}

	for i := 0; i < vm.StackDepth; i++ {
		constraints = append(constraints,
			pin(fmt.Sprintf("terminal.st%d", i), Terminal, vm.StackCol(i), stackRegister(inputs.FinalStack, i)))
	}
	constraints = append(constraints,
		pin("terminal.depth", Terminal, vm.ColDepth, field.New(uint64(len(inputs.FinalStack)))),
		pin("terminal.dig", Terminal, vm.ColDigest, inputs.ProgramDigest),
		BoundaryConstraint{
			Name:   "terminal.halted",
			Row:    Terminal,
			Degree: 2,
			Eval: func(r []field.Element) field.Element {
				return ComputeOpFlags(r)[vm.Halt].Sub(field.One)
			},
		},
	)
	for i := 0; i < vm.NumHelpers; i++ {
		constraints = append(constraints,
			pin(fmt.Sprintf("terminal.h%d", i), Terminal, vm.HelperCol(i), field.Zero))
	}
	return constraints
}
