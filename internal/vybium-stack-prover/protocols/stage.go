package protocols

import "fmt"

// Stage is a step of the proving pipeline. Stages only move forward.
type Stage int

const (
	StageTraceReceived Stage = iota
	StageBaseCommitted
	StageChallengesDrawn
	StageConstraintsEvaluated
	StageCompositionCommitted
	StageFRIFolded
	StageQueriesAnswered
	StageProofAssembled
)

// NumStages is the number of pipeline stages
const NumStages = int(StageProofAssembled) + 1

var stageNames = [...]string{
	StageTraceReceived:        "TraceReceived",
	StageBaseCommitted:        "Committed(base)",
	StageChallengesDrawn:      "ChallengesDrawn",
	StageConstraintsEvaluated: "ConstraintsEvaluated",
	StageCompositionCommitted: "CompositionCommitted",
	StageFRIFolded:            "FRIFolded",
	StageQueriesAnswered:      "QueriesAnswered",
	StageProofAssembled:       "ProofAssembled",
}

// String returns the stage name
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}
