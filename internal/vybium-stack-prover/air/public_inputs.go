package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// PublicInputs are the values prover and verifier agree on. Stacks are
// listed top first.
type PublicInputs struct {
	ProgramDigest field.Element
	InitialStack  []field.Element
	FinalStack    []field.Element
}

// NewPublicInputs copies the given values into a PublicInputs
func NewPublicInputs(digest field.Element, initial, final []field.Element) *PublicInputs {
	return &PublicInputs{
		ProgramDigest: digest,
		InitialStack:  append([]field.Element(nil), initial...),
		FinalStack:    append([]field.Element(nil), final...),
	}
}

// Validate checks that both stacks fit in the stack registers
func (p *PublicInputs) Validate() error {
	if p == nil {
		return fmt.Errorf("public inputs are nil")
	}
	if len(p.InitialStack) > vm.StackDepth {
		return fmt.Errorf("initial stack has %d elements, at most %d fit", len(p.InitialStack), vm.StackDepth)
	}
	if len(p.FinalStack) > vm.StackDepth {
		return fmt.Errorf("final stack has %d elements, at most %d fit", len(p.FinalStack), vm.StackDepth)
	}
	return nil
}

// Elements encodes the inputs for the transcript: digest, initial stack
// length and values, final stack length and values.
func (p *PublicInputs) Elements() []field.Element {
	out := make([]field.Element, 0, 3+len(p.InitialStack)+len(p.FinalStack))
	out = append(out, p.ProgramDigest)
	out = append(out, field.New(uint64(len(p.InitialStack))))
	out = append(out, p.InitialStack...)
	out = append(out, field.New(uint64(len(p.FinalStack))))
	out = append(out, p.FinalStack...)
	return out
}

// stackRegister returns register i of stack, zero past its end
func stackRegister(stack []field.Element, i int) field.Element {
	if i < len(stack) {
		return stack[i]
	}
	return field.Zero
}
