package vm

import "fmt"

// Trace column layout. Every row holds the machine state before the row's
// instruction runs together with that instruction's encoding and helpers.
const (
	// StackDepth is the number of stack registers kept in the trace
	StackDepth = 16
	// MemorySize is the number of memory cells
	MemorySize = 4
	// NumHelpers is the number of shared helper columns
	NumHelpers = 16

	ColClk     = 0
	ColImm     = 1
	ColFam0    = 2
	ColSel0    = ColFam0 + NumFamilies
	ColStack0  = ColSel0 + NumSelectors
	ColDepth   = ColStack0 + StackDepth
	ColDigest  = ColDepth + 1
	ColMem0    = ColDigest + 1
	ColHelper0 = ColMem0 + MemorySize

	// TraceWidth is the number of columns of a trace
	TraceWidth = ColHelper0 + NumHelpers
)

// FamCol returns the column of family bit f
func FamCol(f int) int { return ColFam0 + f }

// SelCol returns the column of selector bit s
func SelCol(s int) int { return ColSel0 + s }

// StackCol returns the column of stack register i, 0 being the top
func StackCol(i int) int { return ColStack0 + i }

// MemCol returns the column of memory cell i
func MemCol(i int) int { return ColMem0 + i }

// HelperCol returns the column of helper i
func HelperCol(i int) int { return ColHelper0 + i }

// ColumnName returns a readable name for a column index
func ColumnName(col int) string {
	switch {
	case col == ColClk:
		return "clk"
	case col == ColImm:
		return "imm"
	case col >= ColFam0 && col < ColSel0:
		return fmt.Sprintf("fam%d", col-ColFam0)
	case col >= ColSel0 && col < ColStack0:
		return fmt.Sprintf("sel%d", col-ColSel0)
	case col >= ColStack0 && col < ColDepth:
		return fmt.Sprintf("st%d", col-ColStack0)
	case col == ColDepth:
		return "depth"
	case col == ColDigest:
		return "dig"
	case col >= ColMem0 && col < ColHelper0:
		return fmt.Sprintf("mem%d", col-ColMem0)
	case col >= ColHelper0 && col < TraceWidth:
		return fmt.Sprintf("h%d", col-ColHelper0)
	default:
		return fmt.Sprintf("col%d", col)
	}
}
