// Package vm provides the stack machine instruction set, the trace layout
// and a reference executor that produces traces for the prover.
package vm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Instruction is an opcode. The value is 4*family + selector, which is the
// position of the instruction in the two one-hot groups of the trace.
type Instruction uint8

const (
	// NumFamilies is the number of family bits in a row
	NumFamilies = 7
	// NumSelectors is the number of selector bits in a row
	NumSelectors = 4
	// NumOpcodes is the number of encodable opcodes, reserved ones included
	NumOpcodes = NumFamilies * NumSelectors
)

// Stack machine ISA, grouped by family
const (
	// ========== Family 0: control ==========

	// Nop does nothing
	Nop Instruction = iota
	// Halt terminates execution; every row after it is a Halt row
	Halt
	// CSwap pops a boolean and swaps the next two elements when it is 1
	CSwap
	// CDrop pops c, b, a and pushes b when c is 1, a otherwise
	CDrop

	// ========== Family 1: stack growth ==========

	// Push pushes its immediate
	Push
	// Pad pushes zero
	Pad
	// Dup duplicates the top element
	Dup
	// Over copies the second element to the top
	Over

	// ========== Family 2: stack permutation and shrink ==========

	// Drop removes the top element
	Drop
	// Swap exchanges the top two elements
	Swap
	// Rot moves the third element to the top
	Rot
	reserved11

	// ========== Family 3: field arithmetic ==========

	// Add replaces the top two elements with their sum
	Add
	// Mul replaces the top two elements with their product
	Mul
	// Neg negates the top element
	Neg
	// Inv replaces the top element with its inverse
	Inv

	// ========== Family 4: comparison ==========

	// Eq replaces the top two elements with 1 if equal, 0 otherwise
	Eq
	// Eqz replaces the top element with 1 if zero, 0 otherwise
	Eqz
	// Not negates a boolean top element
	Not
	// Assert pops the top element, which must be 1
	Assert

	// ========== Family 5: u8 bitwise ==========

	// U8And replaces the top two bytes with their bitwise and
	U8And
	// U8Or replaces the top two bytes with their bitwise or
	U8Or
	// U8Xor replaces the top two bytes with their bitwise xor
	U8Xor
	// U8Shr shifts the top byte right by one
	U8Shr

	// ========== Family 6: memory and range ==========

	// MLoad replaces an address in [0, 4) with the memory cell it names
	MLoad
	// MStore pops an address and a value and writes the value
	MStore
	// U8Check asserts the top element is below 256
	U8Check
	reserved27
)

// InstructionInfo provides metadata about an instruction
type InstructionInfo struct {
	Opcode      Instruction
	Name        string
	Description string
	StackEffect int  // Net effect on stack depth
	HasArg      bool // Whether the instruction carries an immediate
}

// AllInstructions returns information about every defined instruction
var AllInstructions = map[Instruction]InstructionInfo{
	Nop:   {Nop, "nop", "No operation", 0, false},
	Halt:  {Halt, "halt", "Terminate execution", 0, false},
	CSwap: {CSwap, "cswap", "Conditional swap", -1, false},
	CDrop: {CDrop, "cdrop", "Conditional select", -2, false},

	Push: {Push, "push", "Push immediate", 1, true},
	Pad:  {Pad, "pad", "Push zero", 1, false},
	Dup:  {Dup, "dup", "Duplicate top", 1, false},
	Over: {Over, "over", "Copy second to top", 1, false},

	Drop: {Drop, "drop", "Remove top", -1, false},
	Swap: {Swap, "swap", "Swap top two", 0, false},
	Rot:  {Rot, "rot", "Rotate top three", 0, false},

	Add: {Add, "add", "Add top two elements", -1, false},
	Mul: {Mul, "mul", "Multiply top two elements", -1, false},
	Neg: {Neg, "neg", "Additive inverse", 0, false},
	Inv: {Inv, "inv", "Multiplicative inverse", 0, false},

	Eq:     {Eq, "eq", "Check equality", -1, false},
	Eqz:    {Eqz, "eqz", "Check zero", 0, false},
	Not:    {Not, "not", "Boolean negation", 0, false},
	Assert: {Assert, "assert", "Assert top is 1", -1, false},

	U8And: {U8And, "u8and", "Bitwise and of bytes", -1, false},
	U8Or:  {U8Or, "u8or", "Bitwise or of bytes", -1, false},
	U8Xor: {U8Xor, "u8xor", "Bitwise xor of bytes", -1, false},
	U8Shr: {U8Shr, "u8shr", "Shift byte right by one", 0, false},

	MLoad:   {MLoad, "mload", "Read memory cell", 0, false},
	MStore:  {MStore, "mstore", "Write memory cell", -2, false},
	U8Check: {U8Check, "u8check", "Range check below 256", 0, false},
}

// Reserved lists the encodable opcodes that no instruction uses
var Reserved = []Instruction{reserved11, reserved27}

// NewInstruction returns the instruction at a family and selector position
func NewInstruction(family, selector int) Instruction {
	return Instruction(family*NumSelectors + selector)
}

// Family returns the index of the instruction's family bit
func (i Instruction) Family() int {
	return int(i) / NumSelectors
}

// Selector returns the index of the instruction's selector bit
func (i Instruction) Selector() int {
	return int(i) % NumSelectors
}

// IsValid reports whether the instruction is defined
func (i Instruction) IsValid() bool {
	_, ok := AllInstructions[i]
	return ok
}

// String returns the name of the instruction
func (i Instruction) String() string {
	if info, ok := AllInstructions[i]; ok {
		return info.Name
	}
	return fmt.Sprintf("unknown(%d)", i)
}

// Info returns metadata about the instruction
func (i Instruction) Info() (InstructionInfo, error) {
	info, ok := AllInstructions[i]
	if !ok {
		return InstructionInfo{}, fmt.Errorf("unknown instruction: %d", i)
	}
	return info, nil
}

// StackEffect returns the net effect on stack depth
func (i Instruction) StackEffect() int {
	return AllInstructions[i].StackEffect
}

// HasArgument returns whether the instruction takes an immediate
func (i Instruction) HasArgument() bool {
	return AllInstructions[i].HasArg
}

// EncodedInstruction is an instruction with its immediate
type EncodedInstruction struct {
	Instruction Instruction
	Argument    field.Element
}

// NewEncodedInstruction creates an encoded instruction. Only Push takes an
// argument; pass nil for everything else.
func NewEncodedInstruction(inst Instruction, arg *field.Element) (EncodedInstruction, error) {
	if !inst.IsValid() {
		return EncodedInstruction{}, fmt.Errorf("unknown instruction: %d", inst)
	}
	if inst.HasArgument() && arg == nil {
		return EncodedInstruction{}, fmt.Errorf("instruction %s requires an argument", inst)
	}
	if !inst.HasArgument() && arg != nil {
		return EncodedInstruction{}, fmt.Errorf("instruction %s does not take an argument", inst)
	}
	ei := EncodedInstruction{Instruction: inst, Argument: field.Zero}
	if arg != nil {
		ei.Argument = *arg
	}
	return ei, nil
}

// String renders the instruction in program text form
func (ei EncodedInstruction) String() string {
	if ei.Instruction.HasArgument() {
		return fmt.Sprintf("%s.%d", ei.Instruction, ei.Argument.Value())
	}
	return ei.Instruction.String()
}

// Program represents a stack machine program
type Program struct {
	Instructions []EncodedInstruction
}

// NewProgram creates a new program
func NewProgram() *Program {
	return &Program{Instructions: make([]EncodedInstruction, 0)}
}

// AddInstruction adds an instruction to the program
func (p *Program) AddInstruction(inst EncodedInstruction) {
	p.Instructions = append(p.Instructions, inst)
}

// Emit appends an instruction without an argument
func (p *Program) Emit(inst Instruction) *Program {
	p.Instructions = append(p.Instructions, EncodedInstruction{Instruction: inst, Argument: field.Zero})
	return p
}

// EmitPush appends a push of value
func (p *Program) EmitPush(value uint64) *Program {
	p.Instructions = append(p.Instructions, EncodedInstruction{Instruction: Push, Argument: field.New(value)})
	return p
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.Instructions)
}

// String renders the program one instruction per line
func (p *Program) String() string {
	var sb strings.Builder
	for _, inst := range p.Instructions {
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ValidateProgram validates a program for correctness
func ValidateProgram(program *Program) error {
	if program == nil || len(program.Instructions) == 0 {
		return fmt.Errorf("empty program")
	}

	for i, inst := range program.Instructions {
		if !inst.Instruction.IsValid() {
			return fmt.Errorf("instruction %d: unknown opcode %d", i, inst.Instruction)
		}
		if !inst.Instruction.HasArgument() && !inst.Argument.IsZero() {
			return fmt.Errorf("instruction %d: %s does not take an argument", i, inst.Instruction)
		}
		// Halt is absorbing, so it may only appear at the end
		if inst.Instruction == Halt && i != len(program.Instructions)-1 {
			return fmt.Errorf("instruction %d: halt before the end of the program", i)
		}
	}

	return nil
}

// ParseProgram reads program text: one instruction per line, push takes
// its immediate as push.<n>, and # starts a comment.
func ParseProgram(text string) (*Program, error) {
	byName := make(map[string]Instruction, len(AllInstructions))
	for op, info := range AllInstructions {
		byName[info.Name] = op
	}

	program := NewProgram()
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		src := scanner.Text()
		if idx := strings.IndexByte(src, '#'); idx >= 0 {
			src = src[:idx]
		}
		for _, token := range strings.Fields(src) {
			name, arg, hasArg := strings.Cut(token, ".")
			op, ok := byName[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown instruction %q", line, name)
			}
			var argument *field.Element
			if hasArg {
				v, err := strconv.ParseUint(arg, 0, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid argument %q: %w", line, arg, err)
				}
				if v >= field.P {
					return nil, fmt.Errorf("line %d: argument %d exceeds field modulus", line, v)
				}
				e := field.New(v)
				argument = &e
			}
			inst, err := NewEncodedInstruction(op, argument)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			program.AddInstruction(inst)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	if err := ValidateProgram(program); err != nil {
		return nil, err
	}
	return program, nil
}
