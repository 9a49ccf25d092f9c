package protocols

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

// ProofVersion is written into every serialized proof
const ProofVersion = 1

// Proof contains everything an external verifier needs besides the AIR:
// the session shape, the public inputs, every commitment and challenge,
// the FRI remainder and the query openings.
type Proof struct {
	TraceLength      int
	TraceWidth       int
	BlowupFactor     int
	FRIRemainderSize int

	PublicInputs *air.PublicInputs

	TraceRoot       hash.Digest
	CompositionRoot hash.Digest

	// FRIRoots are the roots of the folded layers, composition excluded
	FRIRoots      []hash.Digest
	FRIChallenges []field.Element
	Remainder     []field.Element

	Queries []QueryOpening
}

// QueryOpening reveals one extension point: the trace rows at the point
// and its successor, and one folding pair per committed FRI layer.
type QueryOpening struct {
	Position int

	Row     []field.Element
	RowPath []core.ProofNode

	NextPosition int
	NextRow      []field.Element
	NextRowPath  []core.ProofNode

	Layers []LayerOpening
}

// LayerOpening is a folding pair with its authentication path. Index is
// the leaf index: Low sits at Index and High at Index + len/2.
type LayerOpening struct {
	Index int
	Low   field.Element
	High  field.Element
	Path  []core.ProofNode
}

// Composition returns the composition value at the query position
func (q *QueryOpening) Composition() field.Element {
	if len(q.Layers) == 0 {
		return field.Zero
	}
	if q.Position == q.Layers[0].Index {
		return q.Layers[0].Low
	}
	return q.Layers[0].High
}

type wireNode struct {
	Hash  []uint64 `cbor:"h"`
	Right bool     `cbor:"r"`
}

type wireLayer struct {
	Index uint64     `cbor:"index"`
	Low   uint64     `cbor:"low"`
	High  uint64     `cbor:"high"`
	Path  []wireNode `cbor:"path"`
}

type wireQuery struct {
	Position     uint64      `cbor:"position"`
	Row          []uint64    `cbor:"row"`
	RowPath      []wireNode  `cbor:"row_path"`
	NextPosition uint64      `cbor:"next_position"`
	NextRow      []uint64    `cbor:"next_row"`
	NextRowPath  []wireNode  `cbor:"next_row_path"`
	Layers       []wireLayer `cbor:"layers"`
}

type wireProof struct {
	Version          uint64      `cbor:"version"`
	TraceLength      uint64      `cbor:"trace_length"`
	TraceWidth       uint64      `cbor:"trace_width"`
	BlowupFactor     uint64      `cbor:"blowup_factor"`
	FRIRemainderSize uint64      `cbor:"fri_remainder_size"`
	ProgramDigest    uint64      `cbor:"program_digest"`
	InitialStack     []uint64    `cbor:"initial_stack"`
	FinalStack       []uint64    `cbor:"final_stack"`
	TraceRoot        []uint64    `cbor:"trace_root"`
	CompositionRoot  []uint64    `cbor:"composition_root"`
	FRIRoots         [][]uint64  `cbor:"fri_roots"`
	FRIChallenges    []uint64    `cbor:"fri_challenges"`
	Remainder        []uint64    `cbor:"remainder"`
	Queries          []wireQuery `cbor:"queries"`
}

var proofEncMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: invalid deterministic encoding options: %v", err))
	}
	proofEncMode = em
}

// MarshalBinary serializes the proof with deterministic CBOR. Equal proofs
// always serialize to identical bytes.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if p.PublicInputs == nil {
		return nil, fmt.Errorf("proof has no public inputs")
	}
	w := wireProof{
		Version:          ProofVersion,
		TraceLength:      uint64(p.TraceLength),
		TraceWidth:       uint64(p.TraceWidth),
		BlowupFactor:     uint64(p.BlowupFactor),
		FRIRemainderSize: uint64(p.FRIRemainderSize),
		ProgramDigest:    p.PublicInputs.ProgramDigest.Value(),
		InitialStack:     elementWords(p.PublicInputs.InitialStack),
		FinalStack:       elementWords(p.PublicInputs.FinalStack),
		TraceRoot:        core.DigestWords(p.TraceRoot),
		CompositionRoot:  core.DigestWords(p.CompositionRoot),
		FRIRoots:         make([][]uint64, len(p.FRIRoots)),
		FRIChallenges:    elementWords(p.FRIChallenges),
		Remainder:        elementWords(p.Remainder),
		Queries:          make([]wireQuery, len(p.Queries)),
	}
	for i, root := range p.FRIRoots {
		w.FRIRoots[i] = core.DigestWords(root)
	}
	for i, q := range p.Queries {
		wq := wireQuery{
			Position:     uint64(q.Position),
			Row:          elementWords(q.Row),
			RowPath:      pathWords(q.RowPath),
			NextPosition: uint64(q.NextPosition),
			NextRow:      elementWords(q.NextRow),
			NextRowPath:  pathWords(q.NextRowPath),
			Layers:       make([]wireLayer, len(q.Layers)),
		}
		for k, l := range q.Layers {
			wq.Layers[k] = wireLayer{
				Index: uint64(l.Index),
				Low:   l.Low.Value(),
				High:  l.High.Value(),
				Path:  pathWords(l.Path),
			}
		}
		w.Queries[i] = wq
	}

	data, err := proofEncMode.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}
	return data, nil
}

// UnmarshalBinary restores a proof written by MarshalBinary
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode proof: %w", err)
	}
	if w.Version != ProofVersion {
		return fmt.Errorf("unsupported proof version %d", w.Version)
	}

	var out Proof
	var err error
	out.TraceLength = int(w.TraceLength)
	out.TraceWidth = int(w.TraceWidth)
	out.BlowupFactor = int(w.BlowupFactor)
	out.FRIRemainderSize = int(w.FRIRemainderSize)

	digest, err := wordElement(w.ProgramDigest)
	if err != nil {
		return fmt.Errorf("program digest: %w", err)
	}
	initial, err := wordElements(w.InitialStack)
	if err != nil {
		return fmt.Errorf("initial stack: %w", err)
	}
	final, err := wordElements(w.FinalStack)
	if err != nil {
		return fmt.Errorf("final stack: %w", err)
	}
	out.PublicInputs = air.NewPublicInputs(digest, initial, final)

	if out.TraceRoot, err = core.DigestFromWords(w.TraceRoot); err != nil {
		return fmt.Errorf("trace root: %w", err)
	}
	if out.CompositionRoot, err = core.DigestFromWords(w.CompositionRoot); err != nil {
		return fmt.Errorf("composition root: %w", err)
	}
	out.FRIRoots = make([]hash.Digest, len(w.FRIRoots))
	for i, words := range w.FRIRoots {
		if out.FRIRoots[i], err = core.DigestFromWords(words); err != nil {
			return fmt.Errorf("FRI root %d: %w", i, err)
		}
	}
	if out.FRIChallenges, err = wordElements(w.FRIChallenges); err != nil {
		return fmt.Errorf("FRI challenges: %w", err)
	}
	if out.Remainder, err = wordElements(w.Remainder); err != nil {
		return fmt.Errorf("remainder: %w", err)
	}

	out.Queries = make([]QueryOpening, len(w.Queries))
	for i, wq := range w.Queries {
		q := QueryOpening{
			Position:     int(wq.Position),
			NextPosition: int(wq.NextPosition),
			Layers:       make([]LayerOpening, len(wq.Layers)),
		}
		if q.Row, err = wordElements(wq.Row); err != nil {
			return fmt.Errorf("query %d row: %w", i, err)
		}
		if q.RowPath, err = wordPath(wq.RowPath); err != nil {
			return fmt.Errorf("query %d row path: %w", i, err)
		}
		if q.NextRow, err = wordElements(wq.NextRow); err != nil {
			return fmt.Errorf("query %d next row: %w", i, err)
		}
		if q.NextRowPath, err = wordPath(wq.NextRowPath); err != nil {
			return fmt.Errorf("query %d next row path: %w", i, err)
		}
		for k, wl := range wq.Layers {
			l := LayerOpening{Index: int(wl.Index)}
			if l.Low, err = wordElement(wl.Low); err != nil {
				return fmt.Errorf("query %d layer %d: %w", i, k, err)
			}
			if l.High, err = wordElement(wl.High); err != nil {
				return fmt.Errorf("query %d layer %d: %w", i, k, err)
			}
			if l.Path, err = wordPath(wl.Path); err != nil {
				return fmt.Errorf("query %d layer %d path: %w", i, k, err)
			}
			q.Layers[k] = l
		}
		out.Queries[i] = q
	}

	*p = out
	return nil
}

func elementWords(elems []field.Element) []uint64 {
	out := make([]uint64, len(elems))
	for i, e := range elems {
		out[i] = e.Value()
	}
	return out
}

func wordElement(w uint64) (field.Element, error) {
	if w >= field.P {
		return field.Zero, fmt.Errorf("value %d is not a canonical field element", w)
	}
	return field.New(w), nil
}

func wordElements(words []uint64) ([]field.Element, error) {
	out := make([]field.Element, len(words))
	for i, w := range words {
		e, err := wordElement(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func pathWords(path []core.ProofNode) []wireNode {
	out := make([]wireNode, len(path))
	for i, node := range path {
		out[i] = wireNode{Hash: core.DigestWords(node.Hash), Right: node.IsRight}
	}
	return out
}

func wordPath(nodes []wireNode) ([]core.ProofNode, error) {
	out := make([]core.ProofNode, len(nodes))
	for i, n := range nodes {
		d, err := core.DigestFromWords(n.Hash)
		if err != nil {
			return nil, err
		}
		out[i] = core.ProofNode{Hash: d, IsRight: n.Right}
	}
	return out, nil
}
