package core

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// RangeRunner splits [0, n) into disjoint ranges and runs work on each.
// It returns only after every range has been processed.
type RangeRunner func(n int, work func(lo, hi int)) error

// SequentialRunner runs the whole range on the calling goroutine.
func SequentialRunner(n int, work func(lo, hi int)) error {
	if n > 0 {
		work(0, n)
	}
	return nil
}

// MerkleTree represents a Tip5 Merkle tree for committing to rows of field elements
type MerkleTree struct {
	levels [][]hash.Digest
}

// ProofNode is one sibling on an authentication path
type ProofNode struct {
	Hash    hash.Digest
	IsRight bool
}

// HashLeaf hashes a row of field elements into a leaf digest
func HashLeaf(values []field.Element) hash.Digest {
	return hash.HashVarlen(values)
}

// HashPair compresses two digests into their parent
func HashPair(left, right hash.Digest) hash.Digest {
	var input [10]field.Element
	for i := 0; i < hash.DigestLen; i++ {
		input[i] = left[i]
		input[hash.DigestLen+i] = right[i]
	}
	return hash.Hash10(input)
}

// NewMerkleTree builds a tree over the given leaf digests. The number of
// leaves must be a power of two. Each level is hashed through run, so the
// caller decides how the work is spread.
func NewMerkleTree(leaves []hash.Digest, run RangeRunner) (*MerkleTree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, fmt.Errorf("cannot create Merkle tree with empty data")
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("number of leaves must be a power of two, got %d", n)
	}
	if run == nil {
		run = SequentialRunner
	}

	levels := [][]hash.Digest{append([]hash.Digest(nil), leaves...)}
	current := levels[0]
	for len(current) > 1 {
		next := make([]hash.Digest, len(current)/2)
		below := current
		err := run(len(next), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				next[i] = HashPair(below[2*i], below[2*i+1])
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to hash tree level %d: %w", len(levels), err)
		}
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{levels: levels}, nil
}

// Root returns the Merkle root
func (mt *MerkleTree) Root() hash.Digest {
	return mt.levels[len(mt.levels)-1][0]
}

// NumLeaves returns the number of leaves
func (mt *MerkleTree) NumLeaves() int {
	return len(mt.levels[0])
}

// Leaf returns the leaf digest at index
func (mt *MerkleTree) Leaf(index int) hash.Digest {
	return mt.levels[0][index]
}

// Proof generates the authentication path for the given index
func (mt *MerkleTree) Proof(index int) ([]ProofNode, error) {
	if index < 0 || index >= mt.NumLeaves() {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, mt.NumLeaves())
	}

	proof := make([]ProofNode, 0, len(mt.levels)-1)
	current := index
	for level := 0; level < len(mt.levels)-1; level++ {
		sibling := current ^ 1
		proof = append(proof, ProofNode{
			Hash:    mt.levels[level][sibling],
			IsRight: current%2 == 0,
		})
		current /= 2
	}
	return proof, nil
}

// VerifyProof checks that leaf sits at index under root
func VerifyProof(root, leaf hash.Digest, proof []ProofNode, index int) bool {
	current := leaf
	for _, node := range proof {
		if node.IsRight != (index%2 == 0) {
			return false
		}
		if node.IsRight {
			current = HashPair(current, node.Hash)
		} else {
			current = HashPair(node.Hash, current)
		}
		index /= 2
	}
	return index == 0 && DigestEqual(current, root)
}

// DigestEqual compares two digests element by element
func DigestEqual(a, b hash.Digest) bool {
	for i := 0; i < hash.DigestLen; i++ {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// DigestWords returns the canonical values of a digest
func DigestWords(d hash.Digest) []uint64 {
	words := make([]uint64, hash.DigestLen)
	for i := 0; i < hash.DigestLen; i++ {
		words[i] = d[i].Value()
	}
	return words
}

// DigestFromWords rebuilds a digest from its canonical values. Words at or
// above the field modulus are rejected rather than reduced, so every digest
// has exactly one encoding.
func DigestFromWords(words []uint64) (hash.Digest, error) {
	var d hash.Digest
	if len(words) != hash.DigestLen {
		return d, fmt.Errorf("invalid digest length: expected %d words, got %d", hash.DigestLen, len(words))
	}
	for i := 0; i < hash.DigestLen; i++ {
		if words[i] >= field.P {
			return d, fmt.Errorf("digest word %d is not a canonical field element: %d", i, words[i])
		}
		d[i] = field.New(words[i])
	}
	return d, nil
}
