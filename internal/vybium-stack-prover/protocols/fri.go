package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

// FRILayer is one committed codeword of the folding protocol
type FRILayer struct {
	Codeword []field.Element
	Domain   *ArithmeticDomain
	Tree     *core.MerkleTree
}

// FRIResult is the prover side output of the folding protocol
type FRIResult struct {
	// Layers[0] is the composition codeword
	Layers     []FRILayer
	Challenges []field.Element
	Remainder  []field.Element
}

// FoldCodeword halves a codeword over domain with challenge beta. The
// points at i and i + len/2 are x and -x, and fold into
//
//	(f(x) + f(-x)) / 2 + beta * (f(x) - f(-x)) / (2x)
//
// which is a codeword over the squared domain.
func FoldCodeword(codeword []field.Element, domain *ArithmeticDomain, beta field.Element, backend Backend) ([]field.Element, error) {
	if len(codeword) != domain.Length {
		return nil, fmt.Errorf("codeword length %d does not match domain length %d", len(codeword), domain.Length)
	}
	if len(codeword) < 2 {
		return nil, fmt.Errorf("cannot fold codeword of length %d", len(codeword))
	}

	half := len(codeword) / 2
	twoInv := field.New(2).Inverse()
	xInv := core.Powers(domain.Offset.Inverse(), domain.Generator.Inverse(), half)

	folded := make([]field.Element, half)
	err := backend.ForEach(half, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			a, b := codeword[i], codeword[i+half]
			even := a.Add(b).Mul(twoInv)
			odd := a.Sub(b).Mul(twoInv).Mul(xInv[i])
			folded[i] = even.Add(beta.Mul(odd))
		}
	})
	if err != nil {
		return nil, err
	}
	return folded, nil
}

// ProveFRI runs the commit phase on an already committed composition layer.
// Each round draws beta from the channel, folds, and commits the result
// until the codeword fits in remainderSize; the remainder is sent in the
// clear.
func ProveFRI(first FRILayer, remainderSize int, channel *utils.Channel, backend Backend) (*FRIResult, error) {
	if remainderSize < 1 {
		return nil, fmt.Errorf("remainder size must be positive, got %d", remainderSize)
	}

	result := &FRIResult{Layers: []FRILayer{first}}
	current := first
	for len(current.Codeword) > remainderSize {
		beta := channel.ReceiveRandomFieldElement()
		result.Challenges = append(result.Challenges, beta)

		folded, err := FoldCodeword(current.Codeword, current.Domain, beta, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to fold layer %d: %w", len(result.Layers)-1, err)
		}
		domain, err := current.Domain.Halve()
		if err != nil {
			return nil, err
		}

		if len(folded) <= remainderSize {
			result.Remainder = folded
			break
		}

		tree, err := commitCodeword(folded, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to commit layer %d: %w", len(result.Layers), err)
		}
		channel.SendDigest(tree.Root())

		current = FRILayer{Codeword: folded, Domain: domain, Tree: tree}
		result.Layers = append(result.Layers, current)
	}

	if result.Remainder == nil {
		result.Remainder = append([]field.Element(nil), current.Codeword...)
	}
	channel.SendElements(result.Remainder)
	return result, nil
}
