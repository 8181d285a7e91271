// Package pipeline owns the per-session orchestration state machine: one
// book source, one planning table, and the generated appendices, advanced by
// explicit events with no queuing.
package pipeline

// Stage is the current position of a session in the pipeline.
type Stage int

const (
	// StageAwaitingCredential means no working AI credential has been
	// established yet.
	StageAwaitingCredential Stage = iota
	// StageAwaitingUpload means the credential is valid but no book has
	// been ingested.
	StageAwaitingUpload
	// StageExtracted means a book corpus is loaded and ready for analysis.
	StageExtracted
	// StageAnalyzing means the structural analysis call is in flight.
	StageAnalyzing
	// StageReviewing means a planning table exists and can be edited or
	// used to drive generation.
	StageReviewing
	// StageGenerating means an appendix generation call is in flight for
	// one chapter group.
	StageGenerating
	// StageGenerated means at least one appendix exists; further edits to
	// appendices happen by regenerating.
	StageGenerated
)

// String returns the stable display name of the stage.
func (s Stage) String() string {
	switch s {
	case StageAwaitingCredential:
		return "AwaitingCredential"
	case StageAwaitingUpload:
		return "AwaitingUpload"
	case StageExtracted:
		return "Extracted"
	case StageAnalyzing:
		return "Analyzing"
	case StageReviewing:
		return "Reviewing"
	case StageGenerating:
		return "Generating"
	case StageGenerated:
		return "Generated"
	default:
		return "Unknown"
	}
}

// EventType names the events that move a session between stages.
type EventType int

const (
	// EventCredentialValidated fires after a successful credential probe.
	EventCredentialValidated EventType = iota
	// EventNewUpload fires when a new book arrives. It resets all book
	// scoped state before extraction runs.
	EventNewUpload
	// EventExtracted fires after a successful text extraction.
	EventExtracted
	// EventAnalysisRequested starts the structural analysis call.
	EventAnalysisRequested
	// EventAnalyzed fires after a successful analysis.
	EventAnalyzed
	// EventAnalysisFailed returns the session to Extracted.
	EventAnalysisFailed
	// EventEditRequested applies a natural-language table edit.
	EventEditRequested
	// EventGenerationRequested starts an appendix generation call.
	EventGenerationRequested
	// EventGenerated fires after a successful generation.
	EventGenerated
	// EventGenerationFailed returns the session to its pre-call stage.
	EventGenerationFailed
)

// String returns the stable display name of the event.
func (e EventType) String() string {
	switch e {
	case EventCredentialValidated:
		return "CredentialValidated"
	case EventNewUpload:
		return "NewUpload"
	case EventExtracted:
		return "Extracted"
	case EventAnalysisRequested:
		return "AnalysisRequested"
	case EventAnalyzed:
		return "Analyzed"
	case EventAnalysisFailed:
		return "AnalysisFailed"
	case EventEditRequested:
		return "EditRequested"
	case EventGenerationRequested:
		return "GenerationRequested"
	case EventGenerated:
		return "Generated"
	case EventGenerationFailed:
		return "GenerationFailed"
	default:
		return "Unknown"
	}
}

// Transition computes the next stage for an event. Invalid events leave the
// stage unchanged and return an InvalidTransition error, so callers can use
// it both as precondition check and as the single source of truth for the
// transition table.
func Transition(stage Stage, event EventType) (Stage, error) {
	switch event {
	case EventCredentialValidated:
		if stage == StageAwaitingCredential {
			return StageAwaitingUpload, nil
		}

	case EventNewUpload:
		// A new book may arrive in any stage once a credential exists.
		// Everything derived from the previous book is discarded.
		if stage != StageAwaitingCredential {
			return StageAwaitingUpload, nil
		}

	case EventExtracted:
		if stage == StageAwaitingUpload {
			return StageExtracted, nil
		}

	case EventAnalysisRequested:
		if stage == StageExtracted {
			return StageAnalyzing, nil
		}

	case EventAnalyzed:
		if stage == StageAnalyzing {
			return StageReviewing, nil
		}

	case EventAnalysisFailed:
		if stage == StageAnalyzing {
			return StageExtracted, nil
		}

	case EventEditRequested:
		// Table edits are valid whenever a table exists, including after
		// appendices have been generated.
		if stage == StageReviewing || stage == StageGenerated {
			return stage, nil
		}

	case EventGenerationRequested:
		if stage == StageReviewing || stage == StageGenerated {
			return StageGenerating, nil
		}

	case EventGenerated:
		if stage == StageGenerating {
			return StageGenerated, nil
		}

	case EventGenerationFailed:
		if stage == StageGenerating {
			return StageReviewing, nil
		}
	}

	return stage, NewInvalidTransitionError(stage, event)
}
