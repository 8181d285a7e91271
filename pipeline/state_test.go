package pipeline

import "testing"

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		stage   Stage
		event   EventType
		want    Stage
		wantErr bool
	}{
		{"credential validated", StageAwaitingCredential, EventCredentialValidated, StageAwaitingUpload, false},
		{"credential revalidation rejected", StageAwaitingUpload, EventCredentialValidated, StageAwaitingUpload, true},

		{"upload before credential rejected", StageAwaitingCredential, EventNewUpload, StageAwaitingCredential, true},
		{"first upload", StageAwaitingUpload, EventNewUpload, StageAwaitingUpload, false},
		{"re-upload from extracted", StageExtracted, EventNewUpload, StageAwaitingUpload, false},
		{"re-upload from reviewing", StageReviewing, EventNewUpload, StageAwaitingUpload, false},
		{"re-upload from generated", StageGenerated, EventNewUpload, StageAwaitingUpload, false},

		{"extraction success", StageAwaitingUpload, EventExtracted, StageExtracted, false},
		{"extraction in wrong stage", StageReviewing, EventExtracted, StageReviewing, true},

		{"analysis start", StageExtracted, EventAnalysisRequested, StageAnalyzing, false},
		{"analysis before upload rejected", StageAwaitingUpload, EventAnalysisRequested, StageAwaitingUpload, true},
		{"analysis success", StageAnalyzing, EventAnalyzed, StageReviewing, false},
		{"analysis failure", StageAnalyzing, EventAnalysisFailed, StageExtracted, false},

		{"edit while reviewing", StageReviewing, EventEditRequested, StageReviewing, false},
		{"edit after generation", StageGenerated, EventEditRequested, StageGenerated, false},
		{"edit before analysis rejected", StageExtracted, EventEditRequested, StageExtracted, true},

		{"generation from reviewing", StageReviewing, EventGenerationRequested, StageGenerating, false},
		{"generation from generated", StageGenerated, EventGenerationRequested, StageGenerating, false},
		{"generation before analysis rejected", StageExtracted, EventGenerationRequested, StageExtracted, true},
		{"generation success", StageGenerating, EventGenerated, StageGenerated, false},
		{"generation failure", StageGenerating, EventGenerationFailed, StageReviewing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.stage, tt.event)
			if tt.wantErr {
				orchErr, ok := AsOrchestratorError(err)
				if !ok || orchErr.Kind != KindInvalidTransition {
					t.Fatalf("expected InvalidTransition, got %v", err)
				}
				if got != tt.stage {
					t.Errorf("stage must be unchanged on invalid events, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Transition(%v, %v) = %v, want %v", tt.stage, tt.event, got, tt.want)
			}
		})
	}
}

func TestStageStrings(t *testing.T) {
	stages := map[Stage]string{
		StageAwaitingCredential: "AwaitingCredential",
		StageAwaitingUpload:     "AwaitingUpload",
		StageExtracted:          "Extracted",
		StageAnalyzing:          "Analyzing",
		StageReviewing:          "Reviewing",
		StageGenerating:         "Generating",
		StageGenerated:          "Generated",
	}
	for stage, want := range stages {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}

func TestBusyErrorMessage(t *testing.T) {
	err := NewBusyError("generate appendix")
	if err.Kind != KindBusy {
		t.Errorf("unexpected kind %v", err.Kind)
	}
	msg := err.Error()
	if msg == "" || err.Action == "" {
		t.Error("busy errors must carry a message and a remediation action")
	}
}
