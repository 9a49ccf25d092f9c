package vm

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// VMState represents the complete state of the stack machine
type VMState struct {
	// Program memory (read-only)
	Program *Program

	// Operational stack held in StackDepth registers; Stack[StackPointer-1] is the top
	Stack        [StackDepth]field.Element
	StackPointer int

	// Register-file memory
	Memory [MemorySize]field.Element

	// Running program digest
	Digest field.Element

	// Execution state
	CycleCount         uint64
	InstructionPointer int
	Halting            bool
}

// NewVMState creates a machine with the given initial stack, top first
func NewVMState(program *Program, initialStack []field.Element) (*VMState, error) {
	if len(initialStack) > StackDepth {
		return nil, fmt.Errorf("initial stack has %d elements, at most %d fit", len(initialStack), StackDepth)
	}
	vm := &VMState{
		Program: program,
		Digest:  field.Zero,
	}
	for i := range vm.Stack {
		vm.Stack[i] = field.Zero
	}
	for i := range vm.Memory {
		vm.Memory[i] = field.Zero
	}
	for i := len(initialStack) - 1; i >= 0; i-- {
		if err := vm.StackPush(initialStack[i]); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

// StackPush pushes a value onto the stack
func (vm *VMState) StackPush(value field.Element) error {
	if vm.StackPointer >= StackDepth {
		return fmt.Errorf("stack overflow: depth %d", vm.StackPointer)
	}
	vm.Stack[vm.StackPointer] = value
	vm.StackPointer++
	return nil
}

// StackPop pops the top value
func (vm *VMState) StackPop() (field.Element, error) {
	if vm.StackPointer <= 0 {
		return field.Zero, fmt.Errorf("stack underflow")
	}
	vm.StackPointer--
	value := vm.Stack[vm.StackPointer]
	vm.Stack[vm.StackPointer] = field.Zero
	return value, nil
}

// StackPeek returns the element at depth (0 = top)
func (vm *VMState) StackPeek(depth int) (field.Element, error) {
	if depth < 0 || depth >= vm.StackPointer {
		return field.Zero, fmt.Errorf("stack peek out of bounds: depth %d, size %d", depth, vm.StackPointer)
	}
	return vm.Stack[vm.StackPointer-1-depth], nil
}

// StackSet overwrites the element at depth (0 = top)
func (vm *VMState) StackSet(depth int, value field.Element) error {
	if depth < 0 || depth >= vm.StackPointer {
		return fmt.Errorf("stack set out of bounds: depth %d, size %d", depth, vm.StackPointer)
	}
	vm.Stack[vm.StackPointer-1-depth] = value
	return nil
}

// Register returns stack register i as it appears in the trace
func (vm *VMState) Register(i int) field.Element {
	if i >= vm.StackPointer {
		return field.Zero
	}
	return vm.Stack[vm.StackPointer-1-i]
}

// StackContents returns the stack, top first
func (vm *VMState) StackContents() []field.Element {
	out := make([]field.Element, vm.StackPointer)
	for i := range out {
		out[i] = vm.Register(i)
	}
	return out
}

func (vm *VMState) popN(n int) ([]field.Element, error) {
	if vm.StackPointer < n {
		return nil, fmt.Errorf("stack underflow: need %d elements, have %d", n, vm.StackPointer)
	}
	out := make([]field.Element, n)
	for i := range out {
		out[i], _ = vm.StackPop()
	}
	return out, nil
}

func requireBool(name string, v field.Element) error {
	if !v.IsZero() && !v.IsOne() {
		return fmt.Errorf("%s expects a boolean, got %s", name, v.String())
	}
	return nil
}

func byteOf(name string, v field.Element) (uint64, error) {
	if v.Value() >= 256 {
		return 0, fmt.Errorf("%s expects a byte, got %d", name, v.Value())
	}
	return v.Value(), nil
}

func address(name string, v field.Element) (int, error) {
	if v.Value() >= MemorySize {
		return 0, fmt.Errorf("%s address %d out of range [0, %d)", name, v.Value(), MemorySize)
	}
	return int(v.Value()), nil
}

func bits(v uint64, helpers *[NumHelpers]field.Element, offset int) {
	for k := 0; k < 8; k++ {
		helpers[offset+k] = field.New((v >> k) & 1)
	}
}

func boolElement(b bool) field.Element {
	if b {
		return field.One
	}
	return field.Zero
}

// ExecuteInstruction runs one instruction and returns the helper values
// its trace row needs.
func (vm *VMState) ExecuteInstruction(inst EncodedInstruction) ([NumHelpers]field.Element, error) {
	var helpers [NumHelpers]field.Element
	for i := range helpers {
		helpers[i] = field.Zero
	}

	switch inst.Instruction {
	case Nop:
	case Halt:
		vm.Halting = true
		return helpers, nil

	case CSwap:
		if vm.StackPointer < 3 {
			return helpers, fmt.Errorf("stack underflow: cswap needs 3 elements")
		}
		c, _ := vm.StackPop()
		if err := requireBool("cswap", c); err != nil {
			return helpers, err
		}
		if c.IsOne() {
			a, _ := vm.StackPeek(0)
			b, _ := vm.StackPeek(1)
			_ = vm.StackSet(0, b)
			_ = vm.StackSet(1, a)
		}

	case CDrop:
		vals, err := vm.popN(3)
		if err != nil {
			return helpers, err
		}
		if err := requireBool("cdrop", vals[0]); err != nil {
			return helpers, err
		}
		if vals[0].IsOne() {
			return helpers, vm.StackPush(vals[1])
		}
		return helpers, vm.StackPush(vals[2])

	case Push:
		return helpers, vm.StackPush(inst.Argument)
	case Pad:
		return helpers, vm.StackPush(field.Zero)
	case Dup:
		a, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		return helpers, vm.StackPush(a)
	case Over:
		a, err := vm.StackPeek(1)
		if err != nil {
			return helpers, err
		}
		return helpers, vm.StackPush(a)

	case Drop:
		_, err := vm.StackPop()
		return helpers, err
	case Swap:
		vals, err := vm.popN(2)
		if err != nil {
			return helpers, err
		}
		_ = vm.StackPush(vals[0])
		return helpers, vm.StackPush(vals[1])
	case Rot:
		vals, err := vm.popN(3)
		if err != nil {
			return helpers, err
		}
		_ = vm.StackPush(vals[1])
		_ = vm.StackPush(vals[0])
		return helpers, vm.StackPush(vals[2])

	case Add, Mul:
		vals, err := vm.popN(2)
		if err != nil {
			return helpers, err
		}
		if inst.Instruction == Add {
			return helpers, vm.StackPush(vals[0].Add(vals[1]))
		}
		return helpers, vm.StackPush(vals[0].Mul(vals[1]))
	case Neg:
		a, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		return helpers, vm.StackSet(0, a.Neg())
	case Inv:
		a, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		if a.IsZero() {
			return helpers, fmt.Errorf("inverse of zero")
		}
		return helpers, vm.StackSet(0, a.Inverse())

	case Eq:
		vals, err := vm.popN(2)
		if err != nil {
			return helpers, err
		}
		diff := vals[0].Sub(vals[1])
		if !diff.IsZero() {
			helpers[0] = diff.Inverse()
		}
		return helpers, vm.StackPush(boolElement(diff.IsZero()))
	case Eqz:
		a, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		if !a.IsZero() {
			helpers[0] = a.Inverse()
		}
		return helpers, vm.StackSet(0, boolElement(a.IsZero()))
	case Not:
		a, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		if err := requireBool("not", a); err != nil {
			return helpers, err
		}
		return helpers, vm.StackSet(0, field.One.Sub(a))
	case Assert:
		a, err := vm.StackPop()
		if err != nil {
			return helpers, err
		}
		if !a.IsOne() {
			return helpers, fmt.Errorf("assertion failed: expected 1, got %s", a.String())
		}

	case U8And, U8Or, U8Xor:
		vals, err := vm.popN(2)
		if err != nil {
			return helpers, err
		}
		a, err := byteOf(inst.Instruction.String(), vals[0])
		if err != nil {
			return helpers, err
		}
		b, err := byteOf(inst.Instruction.String(), vals[1])
		if err != nil {
			return helpers, err
		}
		bits(a, &helpers, 0)
		bits(b, &helpers, 8)
		var r uint64
		switch inst.Instruction {
		case U8And:
			r = a & b
		case U8Or:
			r = a | b
		default:
			r = a ^ b
		}
		return helpers, vm.StackPush(field.New(r))
	case U8Shr:
		v, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		a, err := byteOf("u8shr", v)
		if err != nil {
			return helpers, err
		}
		bits(a, &helpers, 0)
		return helpers, vm.StackSet(0, field.New(a>>1))

	case MLoad:
		v, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		addr, err := address("mload", v)
		if err != nil {
			return helpers, err
		}
		helpers[addr] = field.One
		return helpers, vm.StackSet(0, vm.Memory[addr])
	case MStore:
		vals, err := vm.popN(2)
		if err != nil {
			return helpers, err
		}
		addr, err := address("mstore", vals[0])
		if err != nil {
			return helpers, err
		}
		helpers[addr] = field.One
		vm.Memory[addr] = vals[1]
	case U8Check:
		v, err := vm.StackPeek(0)
		if err != nil {
			return helpers, err
		}
		a, err := byteOf("u8check", v)
		if err != nil {
			return helpers, err
		}
		bits(a, &helpers, 0)

	default:
		return helpers, fmt.Errorf("unknown instruction: %d", inst.Instruction)
	}

	return helpers, nil
}

// ExecutionResult is a finished run and its trace
type ExecutionResult struct {
	Trace         *Trace
	InitialStack  []field.Element
	FinalStack    []field.Element
	ProgramDigest field.Element
	Cycles        int
}

// Execute runs program from initialStack and records its trace, padded with
// Halt rows to a power of two of at least MinTraceLength rows.
func Execute(program *Program, initialStack []field.Element) (*ExecutionResult, error) {
	return ExecuteWithLength(program, initialStack, MinTraceLength)
}

// ExecuteWithLength is Execute with a caller-chosen minimum trace length
func ExecuteWithLength(program *Program, initialStack []field.Element, minLength int) (*ExecutionResult, error) {
	if err := ValidateProgram(program); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	vm, err := NewVMState(program, initialStack)
	if err != nil {
		return nil, err
	}
	return vm.ExecuteAndTrace(minLength)
}

// ExecuteAndTrace executes the loaded program and records one row per
// instruction, each holding the state before the instruction runs.
func (vm *VMState) ExecuteAndTrace(minLength int) (*ExecutionResult, error) {
	initial := vm.StackContents()
	recorder := NewTraceRecorder()

	for vm.InstructionPointer < len(vm.Program.Instructions) {
		inst := vm.Program.Instructions[vm.InstructionPointer]
		if inst.Instruction == Halt {
			break
		}

		recorder.RecordState(vm, inst)
		helpers, err := vm.ExecuteInstruction(inst)
		if err != nil {
			return nil, fmt.Errorf("execution failed at cycle %d, IP %d (%s): %w",
				vm.CycleCount, vm.InstructionPointer, inst, err)
		}
		recorder.SetHelpers(helpers)

		vm.Digest = FoldDigest(vm.Digest, inst.Instruction, inst.Argument)
		vm.InstructionPointer++
		vm.CycleCount++
	}
	vm.Halting = true
	cycles := int(vm.CycleCount)

	trace, err := recorder.Finalize(vm, minLength)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace: %w", err)
	}

	return &ExecutionResult{
		Trace:         trace,
		InitialStack:  initial,
		FinalStack:    vm.StackContents(),
		ProgramDigest: vm.Digest,
		Cycles:        cycles,
	}, nil
}
