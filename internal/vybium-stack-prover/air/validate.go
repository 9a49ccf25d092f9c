package air

import (
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// Validate evaluates every constraint of a on every row it applies to and
// returns the first one that does not vanish, scanning rows in order. The
// trace shape must already have been checked.
func Validate(a AIR, trace *vm.Trace) *ConstraintViolation {
	n := trace.Length()
	boundary := a.BoundaryConstraints()
	transition := a.TransitionConstraints()

	for _, bc := range boundary {
		if bc.Row != Initial {
			continue
		}
		if v := bc.Eval(trace.Row(0)); !v.IsZero() {
			return &ConstraintViolation{Constraint: bc.Name, Row: 0, NextRow: 0, Value: v}
		}
	}

	frame := &Frame{}
	for r := 0; r < n; r++ {
		frame.Reset(trace.Row(r), trace.Row((r+1)%n))
		for _, tc := range transition {
			if tc.Domain == Transition && r == n-1 {
				continue
			}
			if v := tc.Eval(frame); !v.IsZero() {
				violation := &ConstraintViolation{
					Constraint: tc.Name,
					Row:        r,
					NextRow:    r,
					Value:      v,
				}
				if tc.Domain == Transition {
					violation.Transition = true
					violation.NextRow = r + 1
				}
				return violation
			}
		}
	}

	for _, bc := range boundary {
		if bc.Row != Terminal {
			continue
		}
		if v := bc.Eval(trace.Row(n - 1)); !v.IsZero() {
			return &ConstraintViolation{Constraint: bc.Name, Row: n - 1, NextRow: n - 1, Value: v}
		}
	}
	return nil
}
