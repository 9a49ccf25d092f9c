package vm

import (
	"testing"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// TestInstructionEncoding tests the family and selector split of opcodes
func TestInstructionEncoding(t *testing.T) {
	tests := []struct {
		inst     Instruction
		family   int
		selector int
	}{
		{Nop, 0, 0},
		{Halt, 0, 1},
		{Push, 1, 0},
		{Rot, 2, 2},
		{Inv, 3, 3},
		{Eq, 4, 0},
		{U8Shr, 5, 3},
		{U8Check, 6, 2},
	}

	for _, tt := range tests {
		t.Run(tt.inst.String(), func(t *testing.T) {
			if tt.inst.Family() != tt.family || tt.inst.Selector() != tt.selector {
				t.Errorf("%s encodes as (%d, %d), expected (%d, %d)",
					tt.inst, tt.inst.Family(), tt.inst.Selector(), tt.family, tt.selector)
			}
			if NewInstruction(tt.family, tt.selector) != tt.inst {
				t.Errorf("NewInstruction(%d, %d) = %s", tt.family, tt.selector, NewInstruction(tt.family, tt.selector))
			}
		})
	}

	if len(AllInstructions)+len(Reserved) != NumOpcodes {
		t.Errorf("%d defined + %d reserved opcodes, expected %d", len(AllInstructions), len(Reserved), NumOpcodes)
	}
	for _, r := range Reserved {
		if r.IsValid() {
			t.Errorf("reserved opcode %d is defined", r)
		}
	}
}

// TestNewEncodedInstruction tests argument checking
func TestNewEncodedInstruction(t *testing.T) {
	arg := field.New(5)

	if _, err := NewEncodedInstruction(Push, &arg); err != nil {
		t.Errorf("push with argument: %v", err)
	}
	if _, err := NewEncodedInstruction(Push, nil); err == nil {
		t.Error("push without argument should fail")
	}
	if _, err := NewEncodedInstruction(Add, &arg); err == nil {
		t.Error("add with argument should fail")
	}
	if _, err := NewEncodedInstruction(Instruction(11), nil); err == nil {
		t.Error("reserved opcode should fail")
	}
}

// TestParseProgram tests the program text format
func TestParseProgram(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{"simple", "push.2\npush.3\nadd\n", 3, false},
		{"comments and blank lines", "# header\n\npush.1 # one\ndup add\n", 3, false},
		{"hex immediate", "push.0x10", 1, false},
		{"upper case", "PUSH.1\nDROP", 2, false},
		{"trailing halt", "pad\nhalt\n", 2, false},
		{"halt in the middle", "halt\npad\n", 0, true},
		{"unknown instruction", "push.1\njump\n", 0, true},
		{"missing argument", "push", 0, true},
		{"unexpected argument", "add.1", 0, true},
		{"bad argument", "push.x", 0, true},
		{"argument above modulus", "push.18446744069414584321", 0, true},
		{"empty", "# nothing\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := ParseProgram(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got program %q", program)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if program.Len() != tt.want {
				t.Errorf("parsed %d instructions, expected %d", program.Len(), tt.want)
			}
		})
	}
}

// TestProgramStringRoundTrip tests that rendered programs parse back
func TestProgramStringRoundTrip(t *testing.T) {
	program := NewProgram().EmitPush(7).EmitPush(9).Emit(Swap).Emit(Mul)
	parsed, err := ParseProgram(program.String())
	if err != nil {
		t.Fatalf("failed to parse rendered program: %v", err)
	}
	if !ProgramDigest(parsed).Equal(ProgramDigest(program)) {
		t.Error("digest changed after rendering and parsing")
	}
}

// TestColumnLayout tests the column index helpers
func TestColumnLayout(t *testing.T) {
	if TraceWidth != 51 {
		t.Errorf("TraceWidth = %d, expected 51", TraceWidth)
	}
	names := map[int]string{
		ColClk:        "clk",
		ColImm:        "imm",
		FamCol(6):     "fam6",
		SelCol(0):     "sel0",
		StackCol(15):  "st15",
		ColDepth:      "depth",
		ColDigest:     "dig",
		MemCol(3):     "mem3",
		HelperCol(15): "h15",
	}
	for col, want := range names {
		if got := ColumnName(col); got != want {
			t.Errorf("ColumnName(%d) = %s, expected %s", col, got, want)
		}
	}
}
