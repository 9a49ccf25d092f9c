package air

import (
	"fmt"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// Context is the static description of one proving session. It is built
// once from the public inputs and trace metadata and never changes after.
type Context struct {
	TraceWidth     int
	TraceLength    int
	MinTraceLength int
	MaxTraceLength int

	// MaxDegree bounds every constraint's declared degree
	MaxDegree int

	TransitionDegrees []int
	BoundaryDegrees   []int

	NumPeriodicColumns int
}

// NumTransitionConstraints returns the number of transition constraints
func (c *Context) NumTransitionConstraints() int {
	return len(c.TransitionDegrees)
}

// NumBoundaryConstraints returns the number of boundary constraints
func (c *Context) NumBoundaryConstraints() int {
	return len(c.BoundaryDegrees)
}

// MinBlowupFactor is the smallest extension factor that keeps the
// composition polynomial below the extension domain size.
func (c *Context) MinBlowupFactor() int {
	return utils.NextPowerOfTwo(c.MaxDegree)
}

// CheckTraceShape verifies width and length against the context
func (c *Context) CheckTraceShape(width, length int) error {
	if width != c.TraceWidth {
		return fmt.Errorf("trace width %d does not match AIR width %d", width, c.TraceWidth)
	}
	if !utils.IsPowerOfTwo(length) {
		return fmt.Errorf("trace length %d is not a power of two", length)
	}
	if length < c.MinTraceLength {
		return fmt.Errorf("trace length %d is below the minimum %d", length, c.MinTraceLength)
	}
	if c.MaxTraceLength > 0 && length > c.MaxTraceLength {
		return fmt.Errorf("trace length %d exceeds the maximum %d", length, c.MaxTraceLength)
	}
	if length != c.TraceLength {
		return fmt.Errorf("trace length %d does not match context length %d", length, c.TraceLength)
	}
	return nil
}

// Validate checks the context against the constraint set it describes.
// It catches degree bookkeeping mistakes before any proving work starts.
func (c *Context) Validate(boundary []BoundaryConstraint, transition []TransitionConstraint) error {
	if c.TraceWidth != vm.TraceWidth {
		return fmt.Errorf("context width %d, machine width %d", c.TraceWidth, vm.TraceWidth)
	}
	if c.MaxDegree < 1 {
		return fmt.Errorf("max degree must be positive, got %d", c.MaxDegree)
	}
	if c.NumPeriodicColumns != 0 {
		return fmt.Errorf("context declares %d periodic columns, the machine has none", c.NumPeriodicColumns)
	}
	if len(transition) != len(c.TransitionDegrees) {
		return fmt.Errorf("context declares %d transition constraints, found %d",
			len(c.TransitionDegrees), len(transition))
	}
	if len(boundary) != len(c.BoundaryDegrees) {
		return fmt.Errorf("context declares %d boundary constraints, found %d",
			len(c.BoundaryDegrees), len(boundary))
	}

	seen := make(map[string]bool, len(transition)+len(boundary))
	for i, tc := range transition {
		if tc.Degree != c.TransitionDegrees[i] {
			return fmt.Errorf("transition constraint %q has degree %d, context declares %d",
				tc.Name, tc.Degree, c.TransitionDegrees[i])
		}
		if tc.Degree < 1 || tc.Degree > c.MaxDegree {
			return fmt.Errorf("transition constraint %q degree %d outside [1, %d]", tc.Name, tc.Degree, c.MaxDegree)
		}
		if tc.Eval == nil {
			return fmt.Errorf("transition constraint %q has no evaluator", tc.Name)
		}
		if seen[tc.Name] {
			return fmt.Errorf("duplicate constraint name %q", tc.Name)
		}
		seen[tc.Name] = true
	}
	for i, bc := range boundary {
		if bc.Degree != c.BoundaryDegrees[i] {
			return fmt.Errorf("boundary constraint %q has degree %d, context declares %d",
				bc.Name, bc.Degree, c.BoundaryDegrees[i])
		}
		if bc.Degree < 1 || bc.Degree > c.MaxDegree {
			return fmt.Errorf("boundary constraint %q degree %d outside [1, %d]", bc.Name, bc.Degree, c.MaxDegree)
		}
		if bc.Eval == nil {
			return fmt.Errorf("boundary constraint %q has no evaluator", bc.Name)
		}
		if seen[bc.Name] {
			return fmt.Errorf("duplicate constraint name %q", bc.Name)
		}
		seen[bc.Name] = true
	}
	return nil
}
