// Package core provides the field, hashing and commitment primitives the
// prover is built on.
package core

import (
	"fmt"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// BatchInversion inverts every element with a single field inversion.
// Zero has no inverse and is reported with its index.
func BatchInversion(elements []field.Element) ([]field.Element, error) {
	for i, elem := range elements {
		if elem.IsZero() {
			return nil, fmt.Errorf("cannot invert zero element at index %d", i)
		}
	}
	results := make([]field.Element, len(elements))
	FromGoldilocks(results, goldilocks.BatchInvert(ToGoldilocks(elements)))
	return results, nil
}

// ParallelBatchInversion inverts disjoint chunks through run. Each chunk
// pays for one full inversion, so it only helps for large inputs.
func ParallelBatchInversion(elements []field.Element, chunk int, run RangeRunner) ([]field.Element, error) {
	n := len(elements)
	if chunk <= 0 || n <= chunk || run == nil {
		return BatchInversion(elements)
	}

	numChunks := (n + chunk - 1) / chunk
	results := make([]field.Element, n)
	errs := make([]error, numChunks)
	err := run(numChunks, func(lo, hi int) {
		for c := lo; c < hi; c++ {
			start := c * chunk
			end := start + chunk
			if end > n {
				end = n
			}
			inv, err := BatchInversion(elements[start:end])
			if err != nil {
				errs[c] = fmt.Errorf("chunk %d: %w", c, err)
				continue
			}
			copy(results[start:end], inv)
		}
	})
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return results, nil
}
