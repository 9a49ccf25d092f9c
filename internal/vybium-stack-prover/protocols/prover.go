// Package protocols turns a stack machine trace into a STARK proof. The
// pipeline moves through a fixed sequence of stages; the data-parallel work
// inside each stage is delegated to a Backend chosen when the prover is
// built.
package protocols

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/air"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/vm"
)

// TranscriptLabel domain-separates this prover's Fiat-Shamir transcripts
const TranscriptLabel = "vybium-stack-prover/v1"

// Options configures one prover
type Options struct {
	// Config holds backend selection and protocol parameters. nil uses
	// utils.DefaultConfig.
	Config *utils.Config

	// OnStage is called after each stage completes, on the proving
	// goroutine
	OnStage func(Stage)
}

// DefaultOptions returns options with the default configuration
func DefaultOptions() Options {
	return Options{Config: utils.DefaultConfig()}
}

// Prover generates proofs with a fixed configuration and backend. A
// Prover may be reused for several traces but not concurrently; every
// Prove call owns its own transcript.
type Prover struct {
	config  *utils.Config
	backend Backend
	onStage func(Stage)
}

// NewProver validates the options and builds the backend
func NewProver(opts Options) (*Prover, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, shapeError(err, "invalid prover options")
	}

	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	return &Prover{
		config:  cfg,
		backend: backend,
		onStage: opts.OnStage,
	}, nil
}

// Backend returns the execution strategy in use
func (p *Prover) Backend() Backend {
	return p.backend
}

// Config returns a copy of the prover configuration
func (p *Prover) Config() *utils.Config {
	return p.config.Clone()
}

// Close releases the backend
func (p *Prover) Close() error {
	return p.backend.Close()
}

// Prove builds a prover from opts, proves one trace and releases it
func Prove(trace *vm.Trace, inputs *air.PublicInputs, opts Options) (*Proof, error) {
	p, err := NewProver(opts)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Prove(trace, inputs)
}

// session is the state of one Prove call. The transcript is owned by the
// session and only touched between backend dispatches.
type session struct {
	prover  *Prover
	air     *air.StackAIR
	domains *Domains
	channel *utils.Channel
	started time.Time
}

func (s *session) advance(stage Stage, fields log.Fields) {
	if fields == nil {
		fields = log.Fields{}
	}
	fields["stage"] = stage.String()
	fields["backend"] = s.prover.backend.Name()
	fields["elapsed"] = time.Since(s.started).String()
	log.WithFields(fields).Debug("prover stage complete")

	if s.prover.onStage != nil {
		s.prover.onStage(stage)
	}
}

// Prove generates a proof for trace against inputs.
//
// The proof is generated in eight stages:
// 1. Check the trace shape against the AIR context, and optionally every
// constraint against the trace
// 2. Extend the trace columns to the coset domain and commit to the rows
// 3. Draw one composition weight per constraint
// 4. Evaluate the composition codeword
// 5. Commit to the composition codeword
// 6. Fold the composition down to the remainder
// 7. Sample positions and open trace and FRI layers there
// 8. Assemble the proof
//
// Shape and option errors are returned before any proving work starts.
// A semantically invalid trace is still proven unless ValidateTrace is set.
func (p *Prover) Prove(trace *vm.Trace, inputs *air.PublicInputs) (*Proof, error) {
	cfg := p.config
	if trace == nil {
		return nil, shapeError(nil, "trace is nil")
	}

	// Step 1: shape and validation
	stackAIR, err := air.New(inputs, air.TraceInfo{
		Width:          trace.Width(),
		Length:         trace.Length(),
		MaxTraceLength: cfg.MaxTraceLength,
	})
	if err != nil {
		return nil, shapeError(err, "failed to build AIR")
	}
	ctx := stackAIR.Context()
	if err := ctx.CheckTraceShape(trace.Width(), trace.Length()); err != nil {
		return nil, shapeError(err, "trace does not fit the AIR")
	}
	if cfg.BlowupFactor < ctx.MinBlowupFactor() {
		return nil, shapeError(nil, "blowup factor %d is below the minimum %d for degree %d constraints",
			cfg.BlowupFactor, ctx.MinBlowupFactor(), ctx.MaxDegree)
	}
	if got := len(stackAIR.EvaluatePeriodicColumns(0)); got != ctx.NumPeriodicColumns {
		return nil, shapeError(nil, "AIR returned %d periodic values, context declares %d", got, ctx.NumPeriodicColumns)
	}
	domains, err := NewDomains(trace.Length(), cfg.BlowupFactor)
	if err != nil {
		return nil, shapeError(err, "failed to derive domains")
	}

	s := &session{
		prover:  p,
		air:     stackAIR,
		domains: domains,
		started: time.Now(),
	}

	if cfg.ValidateTrace {
		if v := air.Validate(stackAIR, trace); v != nil {
			return nil, newError(KindConstraintViolation, v, "trace fails validation")
		}
	}
	s.advance(StageTraceReceived, log.Fields{
		"rows":     trace.Length(),
		"width":    trace.Width(),
		"validate": cfg.ValidateTrace,
	})

	s.channel = utils.NewChannel(TranscriptLabel)
	s.channel.SendElements([]field.Element{
		field.New(uint64(trace.Length())),
		field.New(uint64(trace.Width())),
		field.New(uint64(cfg.BlowupFactor)),
		field.New(uint64(cfg.NumQueries)),
		field.New(uint64(cfg.FRIRemainderSize)),
	})
	s.channel.SendElements(inputs.Elements())

	// Step 2: extend and commit the trace
	rows, err := extendTrace(trace, domains, p.backend, cfg.ValidateTrace)
	if err != nil {
		return nil, resourceError(err, "failed to extend trace")
	}
	traceTree, err := commitRows(rows, p.backend)
	if err != nil {
		return nil, resourceError(err, "failed to commit trace")
	}
	s.channel.SendDigest(traceTree.Root())
	s.advance(StageBaseCommitted, log.Fields{"points": domains.LDE.Length})

	// Step 3: composition weights
	alphas := s.channel.ReceiveRandomFieldElements(CompositionWeights(stackAIR))
	s.advance(StageChallengesDrawn, log.Fields{"weights": len(alphas)})

	// Step 4: composition
	composition, err := EvaluateComposition(stackAIR, rows, domains, alphas, p.backend)
	if err != nil {
		return nil, resourceError(err, "failed to evaluate constraints")
	}
	s.advance(StageConstraintsEvaluated, log.Fields{
		"transition": ctx.NumTransitionConstraints(),
		"boundary":   ctx.NumBoundaryConstraints(),
	})

	// Step 5: commit the composition
	compositionTree, err := commitCodeword(composition, p.backend)
	if err != nil {
		return nil, resourceError(err, "failed to commit composition")
	}
	s.channel.SendDigest(compositionTree.Root())
	s.advance(StageCompositionCommitted, nil)

	// Step 6: FRI
	fri, err := ProveFRI(FRILayer{
		Codeword: composition,
		Domain:   domains.LDE,
		Tree:     compositionTree,
	}, cfg.FRIRemainderSize, s.channel, p.backend)
	if err != nil {
		return nil, resourceError(err, "failed to run FRI")
	}
	s.advance(StageFRIFolded, log.Fields{
		"layers":    len(fri.Layers),
		"remainder": len(fri.Remainder),
	})

	// Step 7: queries
	positions, err := s.channel.ReceiveRandomInts(cfg.NumQueries, domains.LDE.Length)
	if err != nil {
		return nil, transcriptError(err, "failed to sample query positions")
	}
	openings, err := AnswerQueries(positions, rows, traceTree, domains, fri.Layers)
	if err != nil {
		return nil, transcriptError(err, "failed to answer queries")
	}
	s.advance(StageQueriesAnswered, log.Fields{"queries": len(openings)})

	// Step 8: assemble
	proof := &Proof{
		TraceLength:      trace.Length(),
		TraceWidth:       trace.Width(),
		BlowupFactor:     cfg.BlowupFactor,
		FRIRemainderSize: cfg.FRIRemainderSize,
		PublicInputs:     air.NewPublicInputs(inputs.ProgramDigest, inputs.InitialStack, inputs.FinalStack),
		TraceRoot:        traceTree.Root(),
		CompositionRoot:  compositionTree.Root(),
		FRIChallenges:    fri.Challenges,
		Remainder:        fri.Remainder,
		Queries:          openings,
	}
	for _, layer := range fri.Layers[1:] {
		proof.FRIRoots = append(proof.FRIRoots, layer.Tree.Root())
	}
	s.advance(StageProofAssembled, nil)

	return proof, nil
}
