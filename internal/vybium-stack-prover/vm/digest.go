package vm

import "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

// The program digest is folded row by row inside the trace, so it has to be
// a low-degree function of the row: dig' = dig*K + (opcode+1) + imm*L.
var (
	DigestMultiplier = field.New(0x100000001b3)
	DigestImmWeight  = field.New(0x9e3779b97f4a7c15 % field.P)
)

// FoldDigest absorbs one executed instruction into the running digest
func FoldDigest(dig field.Element, op Instruction, imm field.Element) field.Element {
	return dig.Mul(DigestMultiplier).
		Add(field.New(uint64(op) + 1)).
		Add(imm.Mul(DigestImmWeight))
}

// ProgramDigest returns the digest a complete run of program leaves in the
// trace. Halt is not folded.
func ProgramDigest(program *Program) field.Element {
	dig := field.Zero
	for _, inst := range program.Instructions {
		if inst.Instruction == Halt {
			break
		}
		dig = FoldDigest(dig, inst.Instruction, inst.Argument)
	}
	return dig
}
