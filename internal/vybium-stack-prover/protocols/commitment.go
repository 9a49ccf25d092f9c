package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/codes"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// extendTrace interpolates every column over the trace subgroup and
// evaluates it on the extension coset. The result is row-major: one slice
// of width elements per extension point. With check set, every extended
// column is interpolated again and must stay below the trace degree, which
// catches a backend that returns corrupted codewords.
func extendTrace(trace *vm.Trace, d *Domains, backend Backend, check bool) ([][]field.Element, error) {
	code, err := codes.NewReedSolomonCode(d.Trace.Length, d.Blowup, d.LDE.Offset)
	if err != nil {
		return nil, err
	}

	width := trace.Width()
	columns := make([][]field.Element, width)
	for c := range columns {
		columns[c] = trace.Column(c)
	}
	columns, err = backend.ExtendColumns(code, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	if len(columns) != width {
		return nil, fmt.Errorf("%s returned %d columns, expected %d", backend.Name(), len(columns), width)
	}
	size := d.LDE.Length
	for c, col := range columns {
		if len(col) != size {
			return nil, fmt.Errorf("%s extended column %s to %d points, expected %d",
				backend.Name(), vm.ColumnName(c), len(col), size)
		}
	}

	if check {
		inCode := make([]bool, width)
		err = backend.ForEach(width, func(lo, hi int) {
			for c := lo; c < hi; c++ {
				inCode[c], _ = code.IsInCode(columns[c])
			}
		})
		if err != nil {
			return nil, err
		}
		for c, ok := range inCode {
			if !ok {
				return nil, fmt.Errorf("%s returned column %s outside the code", backend.Name(), vm.ColumnName(c))
			}
		}
	}

	rows := make([][]field.Element, size)
	err = backend.ForEach(size, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			row := make([]field.Element, width)
			for c := 0; c < width; c++ {
				row[c] = columns[c][j]
			}
			rows[j] = row
		}
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// commitRows builds a Merkle tree with one leaf per row
func commitRows(rows [][]field.Element, backend Backend) (*core.MerkleTree, error) {
	leaves := make([]hash.Digest, len(rows))
	err := backend.ForEach(len(rows), func(lo, hi int) {
		for j := lo; j < hi; j++ {
			leaves[j] = core.HashLeaf(rows[j])
		}
	})
	if err != nil {
		return nil, err
	}
	return core.NewMerkleTree(leaves, backend.ForEach)
}

// commitCodeword builds a Merkle tree over the folding pairs of a
// codeword: leaf i holds the values at i and i + len/2, the two points
// x and -x that fold into one value of the next layer.
func commitCodeword(codeword []field.Element, backend Backend) (*core.MerkleTree, error) {
	if len(codeword) < 2 {
		return nil, fmt.Errorf("codeword of length %d has no folding pairs", len(codeword))
	}
	half := len(codeword) / 2
	leaves := make([]hash.Digest, half)
	err := backend.ForEach(half, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			leaves[i] = PairLeaf(codeword[i], codeword[i+half])
		}
	})
	if err != nil {
		return nil, err
	}
	return core.NewMerkleTree(leaves, backend.ForEach)
}

// PairLeaf is the leaf digest of a folding pair
func PairLeaf(low, high field.Element) hash.Digest {
	return core.HashLeaf([]field.Element{low, high})
}
