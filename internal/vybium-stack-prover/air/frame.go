package air

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// Frame is the window a transition constraint sees: the current row, the
// next row and the flags of the current row.
type Frame struct {
	Current []field.Element
	Next    []field.Element
	Flags   OpFlags
}

// NewFrame builds a frame and derives the current row's flags
func NewFrame(current, next []field.Element) *Frame {
	f := &Frame{}
	f.Reset(current, next)
	return f
}

// Reset points the frame at a new pair of rows so evaluators can reuse it
func (f *Frame) Reset(current, next []field.Element) {
	f.Current = current
	f.Next = next
	f.Flags = ComputeOpFlags(current)
}

// Flag returns the current row's flag for op
func (f *Frame) Flag(op vm.Instruction) field.Element {
	return f.Flags[op]
}

// St returns stack register i of the current row
func (f *Frame) St(i int) field.Element {
	return f.Current[vm.StackCol(i)]
}

// NextSt returns stack register i of the next row
func (f *Frame) NextSt(i int) field.Element {
	return f.Next[vm.StackCol(i)]
}

// H returns helper i of the current row
func (f *Frame) H(i int) field.Element {
	return f.Current[vm.HelperCol(i)]
}

// Mem returns memory cell i of the current row
func (f *Frame) Mem(i int) field.Element {
	return f.Current[vm.MemCol(i)]
}
