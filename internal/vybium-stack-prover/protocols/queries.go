package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

// AnswerQueries opens the extended trace at each position and its
// successor, and follows the position down every committed FRI layer.
func AnswerQueries(positions []int, rows [][]field.Element, traceTree *core.MerkleTree, d *Domains, layers []FRILayer) ([]QueryOpening, error) {
	openings := make([]QueryOpening, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(rows) {
			return nil, fmt.Errorf("query position %d outside extension domain of %d points", pos, len(rows))
		}

		rowPath, err := traceTree.Proof(pos)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace row %d: %w", pos, err)
		}
		next := d.NextIndex(pos)
		nextPath, err := traceTree.Proof(next)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace row %d: %w", next, err)
		}

		q := QueryOpening{
			Position:     pos,
			Row:          append([]field.Element(nil), rows[pos]...),
			RowPath:      rowPath,
			NextPosition: next,
			NextRow:      append([]field.Element(nil), rows[next]...),
			NextRowPath:  nextPath,
			Layers:       make([]LayerOpening, len(layers)),
		}

		idx := pos
		for k, layer := range layers {
			half := len(layer.Codeword) / 2
			idx %= half
			path, err := layer.Tree.Proof(idx)
			if err != nil {
				return nil, fmt.Errorf("failed to open layer %d at %d: %w", k, idx, err)
			}
			q.Layers[k] = LayerOpening{
				Index: idx,
				Low:   layer.Codeword[idx],
				High:  layer.Codeword[idx+half],
				Path:  path,
			}
		}
		openings[i] = q
	}
	return openings, nil
}
