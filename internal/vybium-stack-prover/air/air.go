// Package air defines the algebraic intermediate representation of the
// stack machine: the opcode flags, the boundary constraints, one group of
// transition constraints per operation family and the context that sizes
// a proving session.
package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// MaxConstraintDegree is the highest degree any constraint declares
const MaxConstraintDegree = 4

// MinTraceLength is the shortest trace the AIR accepts
const MinTraceLength = vm.MinTraceLength

// AIR is the contract the prover consumes
type AIR interface {
	Context() *Context
	BoundaryConstraints() []BoundaryConstraint
	TransitionConstraints() []TransitionConstraint
	EvaluatePeriodicColumns(row int) []field.Element
}

// StackAIR is the AIR of the stack machine
type StackAIR struct {
	context    *Context
	inputs     *PublicInputs
	boundary   []BoundaryConstraint
	transition []TransitionConstraint
}

// TraceInfo is the metadata a session is sized from
type TraceInfo struct {
	Width          int
	Length         int
	MaxTraceLength int
}

// TransitionConstraintSet returns the machine's transition constraints in
// their fixed order
func TransitionConstraintSet() []TransitionConstraint {
	var constraints []TransitionConstraint
	constraints = append(constraints, systemConstraints()...)
	constraints = append(constraints, controlConstraints()...)
	constraints = append(constraints, stackConstraints()...)
	constraints = append(constraints, arithmeticConstraints()...)
	constraints = append(constraints, comparisonConstraints()...)
	constraints = append(constraints, bitwiseConstraints()...)
	constraints = append(constraints, rangeConstraints()...)
	constraints = append(constraints, memoryConstraints()...)
	return constraints
}

// New builds the AIR for one session and validates its context against
// the constraint set
func New(inputs *PublicInputs, info TraceInfo) (*StackAIR, error) {
	if err := inputs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid public inputs: %w", err)
	}

	boundary := boundaryConstraints(inputs)
	transition := TransitionConstraintSet()

	ctx := &Context{
		TraceWidth:         vm.TraceWidth,
		TraceLength:        info.Length,
		MinTraceLength:     MinTraceLength,
		MaxTraceLength:     info.MaxTraceLength,
		MaxDegree:          MaxConstraintDegree,
		TransitionDegrees:  make([]int, len(transition)),
		BoundaryDegrees:    make([]int, len(boundary)),
		NumPeriodicColumns: 0,
	}
	for i, tc := range transition {
		ctx.TransitionDegrees[i] = tc.Degree
	}
	for i, bc := range boundary {
		ctx.BoundaryDegrees[i] = bc.Degree
	}

	if err := ctx.Validate(boundary, transition); err != nil {
		return nil, fmt.Errorf("AIR context does not match constraints: %w", err)
	}

	return &StackAIR{
		context:    ctx,
		inputs:     inputs,
		boundary:   boundary,
		transition: transition,
	}, nil
}

// Context returns the session context
func (a *StackAIR) Context() *Context {
	return a.context
}

// PublicInputs returns the inputs the AIR was built for
func (a *StackAIR) PublicInputs() *PublicInputs {
	return a.inputs
}

// BoundaryConstraints returns the ordered boundary constraints
func (a *StackAIR) BoundaryConstraints() []BoundaryConstraint {
	return a.boundary
}

// TransitionConstraints returns the ordered transition constraints
func (a *StackAIR) TransitionConstraints() []TransitionConstraint {
	return a.transition
}

// EvaluatePeriodicColumns returns the periodic column values at row. The
// machine has no periodic columns.
func (a *StackAIR) EvaluatePeriodicColumns(row int) []field.Element {
	return []field.Element{}
}
