package air

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Group names the operation family a constraint belongs to
type Group string

const (
	GroupSystem     Group = "system"
	GroupControl    Group = "control"
	GroupStack      Group = "stack"
	GroupArithmetic Group = "arithmetic"
	GroupComparison Group = "comparison"
	GroupBitwise    Group = "bitwise"
	GroupRange      Group = "range"
	GroupMemory     Group = "memory"
)

// Domain selects the rows a transition constraint is enforced on.
//
// Following the usual AIR split:
// 1. Consistency: relations within a single row, enforced on every row
// 2. Transition: relations between a row and its successor, enforced on
// every row but the last
type Domain int

const (
	Consistency Domain = iota
	Transition
)

func (d Domain) String() string {
	if d == Consistency {
		return "consistency"
	}
	return "transition"
}

// BoundaryRow selects the single row a boundary constraint pins
type BoundaryRow int

const (
	Initial BoundaryRow = iota
	Terminal
)

func (b BoundaryRow) String() string {
	if b == Initial {
		return "initial"
	}
	return "terminal"
}

// TransitionConstraint is a named polynomial over a frame that must vanish
// on every row of its domain. Eval must be pure field arithmetic over the
// frame; it is evaluated on the low-degree extension as well as the trace.
type TransitionConstraint struct {
	Name   string
	Group  Group
	Domain Domain

	// Degree bounds the total degree of Eval in the trace columns
	Degree int

	Eval func(f *Frame) field.Element
}

// BoundaryConstraint is a named polynomial over one row that must vanish on
// the first or last row.
type BoundaryConstraint struct {
	Name   string
	Row    BoundaryRow
	Degree int
	Eval   func(row []field.Element) field.Element
}

// ConstraintViolation reports the first constraint found not to vanish on a
// concrete trace. Row is the frame's current row. For a transition
// constraint NextRow is the row its next-row values were read from, which
// is where a corrupted cell usually sits; otherwise NextRow equals Row.
type ConstraintViolation struct {
	Constraint string
	Row        int
	NextRow    int
	Transition bool
	Value      field.Element
}

// Error returns the error message
func (v *ConstraintViolation) Error() string {
	if v.Transition {
		return fmt.Sprintf("constraint %q violated at transition %d -> %d (value %s)",
			v.Constraint, v.Row, v.NextRow, v.Value.String())
	}
	return fmt.Sprintf("constraint %q violated at row %d (value %s)", v.Constraint, v.Row, v.Value.String())
}
