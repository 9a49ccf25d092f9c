package vm

import (
	"testing"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func elems(vals ...uint64) []field.Element {
	out := make([]field.Element, len(vals))
	for i, v := range vals {
		out[i] = field.New(v)
	}
	return out
}

func sameStack(a, b []field.Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TestExecute tests the final stack of small programs
func TestExecute(t *testing.T) {
	minusOne := field.New(field.P - 1)

	tests := []struct {
		name    string
		program string
		initial []field.Element
		want    []field.Element
	}{
		{"push add", "push.2 push.3 add", nil, elems(5)},
		{"mul", "push.6 push.7 mul", nil, elems(42)},
		{"neg", "push.1 neg", nil, []field.Element{minusOne}},
		{"inv", "push.2 inv push.2 mul", nil, elems(1)},
		{"dup over", "push.1 push.2 over dup", nil, elems(1, 1, 2, 1)},
		{"pad drop", "pad pad drop", elems(9), elems(0, 9)},
		{"swap", "swap", elems(1, 2), elems(2, 1)},
		{"rot", "rot", elems(1, 2, 3, 4), elems(3, 1, 2, 4)},
		{"cswap taken", "push.1 cswap", elems(1, 2), elems(2, 1)},
		{"cswap not taken", "push.0 cswap", elems(1, 2), elems(1, 2)},
		{"cdrop true", "push.1 cdrop", elems(10, 20), elems(10)},
		{"cdrop false", "push.0 cdrop", elems(10, 20), elems(20)},
		{"eq", "push.4 push.4 eq push.4 push.5 eq", nil, elems(0, 1)},
		{"eqz not", "push.0 eqz push.3 eqz not", nil, elems(1, 1)},
		{"assert", "push.1 assert", elems(7), elems(7)},
		{"u8 bitwise", "push.12 push.10 u8and push.12 push.10 u8or push.12 push.10 u8xor", nil, elems(6, 14, 8)},
		{"u8shr", "push.255 u8shr", nil, elems(127)},
		{"u8check", "push.200 u8check", nil, elems(200)},
		{"memory", "push.42 push.2 mstore push.2 mload push.0 mload", nil, elems(0, 42)},
		{"initial stack kept", "nop", elems(1, 2, 3), elems(1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := ParseProgram(tt.program)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			result, err := Execute(program, tt.initial)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !sameStack(result.FinalStack, tt.want) {
				t.Errorf("final stack %v, expected %v", result.FinalStack, tt.want)
			}
			if !result.ProgramDigest.Equal(ProgramDigest(program)) {
				t.Error("trace digest differs from program digest")
			}
		})
	}
}

// TestExecuteErrors tests that invalid runs are refused
func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name    string
		program string
		initial []field.Element
	}{
		{"underflow", "add", elems(1)},
		{"overflow", "pad", make([]field.Element, StackDepth)},
		{"inverse of zero", "pad inv", nil},
		{"assert fails", "push.2 assert", nil},
		{"not on non boolean", "push.2 not", nil},
		{"cswap on non boolean", "push.2 cswap", elems(1, 2)},
		{"u8 operand too large", "push.256 push.1 u8and", nil},
		{"u8check fails", "push.300 u8check", nil},
		{"address out of range", "push.4 mload", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := ParseProgram(tt.program)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := Execute(program, tt.initial); err == nil {
				t.Error("expected an execution error")
			}
		})
	}

	if _, err := Execute(NewProgram().Emit(Nop), make([]field.Element, StackDepth+1)); err == nil {
		t.Error("oversized initial stack should fail")
	}
}

// TestTraceShape tests padding and row contents
func TestTraceShape(t *testing.T) {
	program := NewProgram().EmitPush(2).EmitPush(3).Emit(Add)
	result, err := Execute(program, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	trace := result.Trace

	if trace.Length() != MinTraceLength || trace.Width() != TraceWidth {
		t.Fatalf("trace is %dx%d, expected %dx%d", trace.Length(), trace.Width(), MinTraceLength, TraceWidth)
	}
	if result.Cycles != 3 {
		t.Errorf("cycles = %d, expected 3", result.Cycles)
	}

	for r := 0; r < trace.Length(); r++ {
		if trace.Get(r, ColClk).Value() != uint64(r) {
			t.Errorf("row %d clock = %d", r, trace.Get(r, ColClk).Value())
		}
	}

	// Row 1 executes push.3 on a stack holding 2
	if trace.Get(1, ColImm).Value() != 3 || trace.Get(1, StackCol(0)).Value() != 2 {
		t.Error("row 1 does not hold push.3 over [2]")
	}
	if !trace.Get(1, FamCol(Push.Family())).IsOne() || !trace.Get(1, SelCol(Push.Selector())).IsOne() {
		t.Error("row 1 opcode bits do not encode push")
	}

	last := trace.Length() - 1
	if !trace.Get(last, FamCol(Halt.Family())).IsOne() || !trace.Get(last, SelCol(Halt.Selector())).IsOne() {
		t.Error("last row is not a halt row")
	}
	if trace.Get(last, StackCol(0)).Value() != 5 || trace.Get(last, ColDepth).Value() != 1 {
		t.Error("last row does not hold the final stack")
	}
}

// TestTraceLengthPadding tests power of two rounding
func TestTraceLengthPadding(t *testing.T) {
	program := NewProgram()
	for i := 0; i < 9; i++ {
		program.Emit(Nop)
	}
	result, err := Execute(program, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Trace.Length() != 16 {
		t.Errorf("trace length %d, expected 16", result.Trace.Length())
	}

	result, err = ExecuteWithLength(NewProgram().Emit(Nop), nil, 64)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Trace.Length() != 64 {
		t.Errorf("trace length %d, expected 64", result.Trace.Length())
	}

	// exactly a power of two instructions still needs a halt row
	program = NewProgram()
	for i := 0; i < 8; i++ {
		program.Emit(Nop)
	}
	result, err = Execute(program, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Trace.Length() != 16 {
		t.Errorf("trace length %d, expected 16", result.Trace.Length())
	}
}

// TestTraceHelpers tests trace utility methods
func TestTraceHelpers(t *testing.T) {
	if _, err := TraceFromRows(nil); err == nil {
		t.Error("empty rows should fail")
	}
	if _, err := TraceFromRows([][]field.Element{elems(1, 2), elems(3)}); err == nil {
		t.Error("ragged rows should fail")
	}

	trace := NewTrace(3, 4)
	trace.Set(2, 1, field.New(9))
	clone := trace.Clone()
	clone.Set(2, 1, field.New(10))
	if trace.Get(2, 1).Value() != 9 {
		t.Error("clone shares storage with the original")
	}
	col := trace.Column(1)
	if len(col) != 4 || col[2].Value() != 9 {
		t.Error("column extraction is wrong")
	}
}
