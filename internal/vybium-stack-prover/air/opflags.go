package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// OpFlags holds one 0/1 selector per opcode, indexed by vm.Instruction.
//
// The flag of the opcode at (family f, selector s) is fam_f * sel_s, a
// degree-2 product of the row's opcode bits. The sum of all flags factors
// as (sum of fam)(sum of sel), so booleanity of the bits together with the
// flags-sum-to-one constraint makes exactly one flag 1 on every row.
type OpFlags [vm.NumOpcodes]field.Element

// ComputeOpFlags derives the flags of a row. It never branches on the row's
// values, so it stays a polynomial when applied to extension points.
func ComputeOpFlags(row []field.Element) OpFlags {
	var flags OpFlags
	for f := 0; f < vm.NumFamilies; f++ {
		fam := row[vm.FamCol(f)]
		for s := 0; s < vm.NumSelectors; s++ {
			flags[f*vm.NumSelectors+s] = fam.Mul(row[vm.SelCol(s)])
		}
	}
	return flags
}

// Sum adds the flags of the given opcodes
func (o *OpFlags) Sum(ops ...vm.Instruction) field.Element {
	acc := field.Zero
	for _, op := range ops {
		acc = acc.Add(o[op])
	}
	return acc
}

// Total adds every flag, reserved ones included
func (o *OpFlags) Total() field.Element {
	acc := field.Zero
	for _, v := range o {
		acc = acc.Add(v)
	}
	return acc
}

// OpcodeValue recovers 4*family + selector as a linear form in the opcode bits
func OpcodeValue(row []field.Element) field.Element {
	acc := field.Zero
	for f := 1; f < vm.NumFamilies; f++ {
		acc = acc.Add(row[vm.FamCol(f)].Mul(field.New(uint64(f * vm.NumSelectors))))
	}
	for s := 1; s < vm.NumSelectors; s++ {
		acc = acc.Add(row[vm.SelCol(s)].Mul(field.New(uint64(s))))
	}
	return acc
}
