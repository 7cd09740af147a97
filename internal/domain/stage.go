package domain

import "fmt"

// Stage is a step in the document processing lifecycle.
type Stage string

const (
	// StageSaved means the file is registered and awaiting processing.
	StageSaved Stage = "saved"
	// StageTextExtracted means plain text has been pulled from the file.
	StageTextExtracted Stage = "text_extracted"
	// StageChunked means the text has been split into fragments.
	StageChunked Stage = "chunked"
	// StageVectorizing means embeddings are being generated and indexed.
	StageVectorizing Stage = "vectorizing"
	// StageCompleted means the document is fully searchable.
	StageCompleted Stage = "completed"
	// StageFailed means processing stopped on an error.
	StageFailed Stage = "failed"
)

// stageTransitions is the lifecycle transition table. StageFailed is
// reachable from every non-terminal stage.
var stageTransitions = map[Stage][]Stage{
	StageSaved:         {StageTextExtracted, StageFailed},
	StageTextExtracted: {StageChunked, StageFailed},
	StageChunked:       {StageVectorizing, StageFailed},
	StageVectorizing:   {StageCompleted, StageFailed},
	StageCompleted:     {},
	StageFailed:        {},
}

// CanTransition reports whether moving from one stage to the next is allowed.
func CanTransition(from, to Stage) bool {
	for _, next := range stageTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a stage change against the transition table.
func Transition(from, to Stage) (Stage, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("stage %s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return to, nil
}

// Terminal reports whether a stage has no outgoing transitions.
func (s Stage) Terminal() bool {
	return len(stageTransitions[s]) == 0
}

// Description returns the operator-facing explanation of a stage.
func (s Stage) Description() string {
	switch s {
	case StageSaved:
		return "File saved, ready for processing"
	case StageTextExtracted:
		return "Text extracted, preparing chunks"
	case StageChunked:
		return "Text chunked, ready for vectorization"
	case StageVectorizing:
		return "Creating embeddings and storing in vector index"
	case StageCompleted:
		return "Fully processed and searchable"
	case StageFailed:
		return "Error occurred during processing"
	default:
		return "Processing..."
	}
}
