package vm

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

// MinTraceLength is the shortest trace the executor produces
const MinTraceLength = 8

// TraceRecorder collects one row per executed instruction
type TraceRecorder struct {
	rows [][]field.Element
}

// NewTraceRecorder creates an empty recorder
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{rows: make([][]field.Element, 0, MinTraceLength)}
}

// RecordState appends the machine state before inst runs
func (tr *TraceRecorder) RecordState(vm *VMState, inst EncodedInstruction) {
	row := make([]field.Element, TraceWidth)
	for i := range row {
		row[i] = field.Zero
	}

	row[ColClk] = field.New(vm.CycleCount)
	row[ColImm] = inst.Argument
	row[FamCol(inst.Instruction.Family())] = field.One
	row[SelCol(inst.Instruction.Selector())] = field.One
	for i := 0; i < StackDepth; i++ {
		row[StackCol(i)] = vm.Register(i)
	}
	row[ColDepth] = field.New(uint64(vm.StackPointer))
	row[ColDigest] = vm.Digest
	for i := 0; i < MemorySize; i++ {
		row[MemCol(i)] = vm.Memory[i]
	}

	tr.rows = append(tr.rows, row)
}

// SetHelpers fills the helper columns of the last recorded row
func (tr *TraceRecorder) SetHelpers(helpers [NumHelpers]field.Element) {
	row := tr.rows[len(tr.rows)-1]
	for i, h := range helpers {
		row[HelperCol(i)] = h
	}
}

// Rows returns the number of recorded rows
func (tr *TraceRecorder) Rows() int {
	return len(tr.rows)
}

// Finalize appends Halt rows holding the final state until the trace
// length is a power of two, at least minLength, with a Halt last row.
func (tr *TraceRecorder) Finalize(vm *VMState, minLength int) (*Trace, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("minimum trace length must be positive, got %d", minLength)
	}
	length := tr.Rows() + 1
	if length < minLength {
		length = minLength
	}
	length = utils.NextPowerOfTwo(length)

	halt := EncodedInstruction{Instruction: Halt, Argument: field.Zero}
	for tr.Rows() < length {
		tr.RecordState(vm, halt)
		vm.CycleCount++
	}
	return TraceFromRows(tr.rows)
}
