package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"foresight_backend/appendix"
	"foresight_backend/core"
	"foresight_backend/gateway"
)

// dispatchProvider answers gateway calls by inspecting the prompt, so one
// fake covers probes, analysis, edits, and generation in a single flow.
type dispatchProvider struct {
	mu sync.Mutex

	analysisJSON string
	editJSON     string
	generateText string

	analysisErr error
	editErr     error
	generateErr error

	// block, when non-nil, is closed by the test to let an in-flight
	// generation call finish.
	block chan struct{}

	calls          []string
	generatePrompt string
}

func (d *dispatchProvider) Complete(ctx context.Context, prompt string, cfg gateway.CallConfig) (string, error) {
	switch {
	case strings.Contains(prompt, "Say 'API key valid'"):
		d.record("probe")
		return "API key valid", nil
	case strings.Contains(prompt, "Here is the current planning table"):
		d.record("edit")
		if d.editErr != nil {
			return "", d.editErr
		}
		return d.editJSON, nil
	case strings.Contains(prompt, "analyzing a book"):
		d.record("analyze")
		if d.analysisErr != nil {
			return "", d.analysisErr
		}
		return d.analysisJSON, nil
	default:
		d.record("generate")
		d.mu.Lock()
		d.generatePrompt = prompt
		d.mu.Unlock()
		if d.block != nil {
			select {
			case <-d.block:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		if d.generateErr != nil {
			return "", d.generateErr
		}
		return d.generateText, nil
	}
}

func (d *dispatchProvider) Name() string { return "dispatch" }

func (d *dispatchProvider) record(op string) {
	d.mu.Lock()
	d.calls = append(d.calls, op)
	d.mu.Unlock()
}

const testTableJSON = `{
	"book_overview": {"title": "Test Book", "total_chapters": 2},
	"chapters": [
		{"group_id": "GROUP_A", "group_type": "GROUP", "chapter_numbers": [1, 2],
		 "thematic_quadrants": ["Technology"]}
	]
}`

const editedTableJSON = `{
	"book_overview": {"title": "Test Book", "total_chapters": 2},
	"chapters": [
		{"group_id": "STANDALONE_1", "group_type": "STANDALONE", "chapter_numbers": [1]},
		{"group_id": "STANDALONE_2", "group_type": "STANDALONE", "chapter_numbers": [2]}
	]
}`

func testConfig() *core.Config {
	return &core.Config{
		Provider:            core.ProviderGemini,
		PrimaryModel:        "primary-model",
		FallbackModel:       "fallback-model",
		MaxFileSize:         100 * 1024 * 1024,
		SoftFileSize:        50 * 1024 * 1024,
		MinExtractableChars: 100,
		MaxCorpusChars:      500000,
		HeadFraction:        0.4,
		TailFraction:        0.2,
		MaxRetries:          0,
	}
}

// newTestOrchestrator wires an orchestrator to the dispatch fake and walks
// it to the requested stage.
func newTestOrchestrator(t *testing.T, provider *dispatchProvider, target Stage) *Orchestrator {
	t.Helper()

	o := NewOrchestrator(testConfig(), nil)
	o.providerFactory = func(ctx context.Context, cfg *core.Config, apiKey string) (gateway.Provider, error) {
		return provider, nil
	}
	if target == StageAwaitingCredential {
		return o
	}

	ctx := context.Background()
	if err := o.ValidateCredential(ctx, "test-key"); err != nil {
		t.Fatalf("credential setup failed: %v", err)
	}
	if target == StageAwaitingUpload {
		return o
	}

	// Uploads go through the real extractor, so tests past this stage
	// inject the book state directly.
	o.mu.Lock()
	o.book = &BookSource{ID: "book-1", Filename: "test.pdf", Corpus: "[Page 1]\ncorpus text"}
	o.stage = StageExtracted
	o.mu.Unlock()
	if target == StageExtracted {
		return o
	}

	if _, err := o.Analyze(ctx); err != nil {
		t.Fatalf("analysis setup failed: %v", err)
	}
	if target == StageReviewing {
		return o
	}

	if _, err := o.Generate(ctx, appendix.Request{GroupID: "GROUP_A"}); err != nil {
		t.Fatalf("generation setup failed: %v", err)
	}
	return o
}

func TestValidateCredentialAdvancesStage(t *testing.T) {
	provider := &dispatchProvider{}
	o := newTestOrchestrator(t, provider, StageAwaitingUpload)

	if got := o.Stage(); got != StageAwaitingUpload {
		t.Errorf("expected AwaitingUpload, got %v", got)
	}
	snapshot := o.Snapshot()
	if snapshot.Provider != "dispatch" {
		t.Errorf("unexpected provider %q", snapshot.Provider)
	}
	if snapshot.Model != "primary-model" {
		t.Errorf("unexpected model %q", snapshot.Model)
	}
	if !snapshot.Completed[StageAwaitingCredential] {
		t.Error("credential stage must be marked complete")
	}
}

func TestValidateCredentialTwiceRejected(t *testing.T) {
	provider := &dispatchProvider{}
	o := newTestOrchestrator(t, provider, StageAwaitingUpload)

	err := o.ValidateCredential(context.Background(), "another-key")
	orchErr, ok := AsOrchestratorError(err)
	if !ok || orchErr.Kind != KindInvalidTransition {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
}

func TestUploadBeforeCredentialRejected(t *testing.T) {
	provider := &dispatchProvider{}
	o := newTestOrchestrator(t, provider, StageAwaitingCredential)

	_, err := o.Upload(context.Background(), "book.pdf", []byte("%PDF-"))
	orchErr, ok := AsOrchestratorError(err)
	if !ok || orchErr.Kind != KindInvalidTransition {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if got := o.Stage(); got != StageAwaitingCredential {
		t.Errorf("stage must be unchanged, got %v", got)
	}
}

func TestUploadFailureLeavesCleanState(t *testing.T) {
	provider := &dispatchProvider{analysisJSON: testTableJSON}
	o := newTestOrchestrator(t, provider, StageAwaitingUpload)

	// Garbage bytes fail extraction, but the reset has already happened:
	// the session waits for another upload with no stale book state.
	_, err := o.Upload(context.Background(), "bad.pdf", []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected an extraction error")
	}
	if got := o.Stage(); got != StageAwaitingUpload {
		t.Errorf("expected AwaitingUpload after failed extraction, got %v", got)
	}
	if snapshot := o.Snapshot(); snapshot.Book != nil {
		t.Error("no book state may survive a failed upload")
	}
}

func TestAnalyzeProducesTable(t *testing.T) {
	provider := &dispatchProvider{analysisJSON: testTableJSON}
	o := newTestOrchestrator(t, provider, StageReviewing)

	if got := o.Stage(); got != StageReviewing {
		t.Errorf("expected Reviewing, got %v", got)
	}
	table := o.Table()
	if table == nil || len(table.Groups) != 1 {
		t.Fatalf("unexpected table %+v", table)
	}
}

func TestAnalyzeFailureReturnsToExtracted(t *testing.T) {
	provider := &dispatchProvider{
		analysisErr: gateway.NewError(gateway.KindRateLimited, "slow down", nil),
	}
	o := newTestOrchestrator(t, provider, StageExtracted)

	_, err := o.Analyze(context.Background())
	if gateway.KindOf(err) != gateway.KindRateLimited {
		t.Fatalf("expected RateLimited, got %v", err)
	}
	if got := o.Stage(); got != StageExtracted {
		t.Errorf("expected Extracted after failed analysis, got %v", got)
	}
	if o.Table() != nil {
		t.Error("no table may be installed on failure")
	}
}

func TestAnalyzeTwiceRejected(t *testing.T) {
	provider := &dispatchProvider{analysisJSON: testTableJSON}
	o := newTestOrchestrator(t, provider, StageReviewing)

	_, err := o.Analyze(context.Background())
	orchErr, ok := AsOrchestratorError(err)
	if !ok || orchErr.Kind != KindInvalidTransition {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
}

func TestEditSwapsTableAtomically(t *testing.T) {
	provider := &dispatchProvider{analysisJSON: testTableJSON, editJSON: editedTableJSON}
	o := newTestOrchestrator(t, provider, StageReviewing)

	table, err := o.Edit(context.Background(), "split the group")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Groups) != 2 {
		t.Errorf("expected the edited table, got %d groups", len(table.Groups))
	}
	if got := o.Stage(); got != StageReviewing {
		t.Errorf("edit must stay in Reviewing, got %v", got)
	}
}

func TestEditFailureKeepsTable(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		editErr:      gateway.NewError(gateway.KindMalformedResponse, "bad output", nil),
	}
	o := newTestOrchestrator(t, provider, StageReviewing)

	before := o.Table()
	_, err := o.Edit(context.Background(), "split the group")
	if err == nil {
		t.Fatal("expected an error")
	}
	if o.Table() != before {
		t.Error("a failed edit must leave the current table untouched")
	}
}

func TestGenerateStoresAppendix(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "appendix content here",
	}
	o := newTestOrchestrator(t, provider, StageGenerated)

	if got := o.Stage(); got != StageGenerated {
		t.Errorf("expected Generated, got %v", got)
	}
	a, ok := o.Appendix("GROUP_A")
	if !ok {
		t.Fatal("appendix must be stored")
	}
	if a.Status() != "Draft" {
		t.Errorf("unexpected status %q", a.Status())
	}
}

func TestRegenerateCountsReplacements(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "appendix content here",
	}
	o := newTestOrchestrator(t, provider, StageGenerated)

	result, err := o.Generate(context.Background(), appendix.Request{GroupID: "GROUP_A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Regenerations != 1 {
		t.Errorf("expected 1 regeneration, got %d", result.Regenerations)
	}
	if result.Status() != "Regenerated{1}" {
		t.Errorf("unexpected status %q", result.Status())
	}
}

func TestGenerateUsesConfiguredDefaults(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "content",
	}
	o := newTestOrchestrator(t, provider, StageReviewing)
	o.cfg.TimeHorizon = "2100-2110"
	o.cfg.WordCount = "1000-1500"

	if _, err := o.Generate(context.Background(), appendix.Request{GroupID: "GROUP_A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.generatePrompt, "2100-2110") {
		t.Error("configured time horizon must reach the generation prompt")
	}
	if !strings.Contains(provider.generatePrompt, "1000-1500") {
		t.Error("configured word count must reach the generation prompt")
	}

	// An explicit request setting still wins over the config.
	req := appendix.Request{GroupID: "GROUP_A", TimeHorizon: "2060-2070"}
	if _, err := o.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.generatePrompt, "2060-2070") {
		t.Error("an explicit time horizon must override the configured default")
	}
}

func TestGenerateFailureStoresNothing(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateErr:  gateway.NewError(gateway.KindQuotaExceeded, "quota spent", nil),
	}
	o := newTestOrchestrator(t, provider, StageReviewing)

	_, err := o.Generate(context.Background(), appendix.Request{GroupID: "GROUP_A"})
	if gateway.KindOf(err) != gateway.KindQuotaExceeded {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
	if got := o.Stage(); got != StageReviewing {
		t.Errorf("expected Reviewing after failed generation, got %v", got)
	}
	if _, ok := o.Appendix("GROUP_A"); ok {
		t.Error("no partial appendix may be stored")
	}
}

func TestBusyRejection(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "content",
		block:        make(chan struct{}),
	}
	o := newTestOrchestrator(t, provider, StageReviewing)

	done := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), appendix.Request{GroupID: "GROUP_A"})
		done <- err
	}()

	// Wait until the generation call is visibly in flight.
	for o.Stage() != StageGenerating {
		time.Sleep(time.Millisecond)
	}

	_, err := o.Edit(context.Background(), "change something")
	orchErr, ok := AsOrchestratorError(err)
	if !ok || orchErr.Kind != KindBusy {
		t.Fatalf("expected Busy, got %v", err)
	}

	// Status reads stay available while busy.
	snapshot := o.Snapshot()
	if snapshot.Stage != StageGenerating {
		t.Errorf("expected Generating in snapshot, got %v", snapshot.Stage)
	}
	if snapshot.GeneratingGroup != "GROUP_A" {
		t.Errorf("expected GROUP_A in flight, got %q", snapshot.GeneratingGroup)
	}

	close(provider.block)
	if err := <-done; err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if got := o.Stage(); got != StageGenerated {
		t.Errorf("expected Generated after completion, got %v", got)
	}
}

func TestNewUploadResetsEverything(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "content",
	}
	o := newTestOrchestrator(t, provider, StageGenerated)

	// A failed upload still counts as a new upload: all derived state is
	// discarded first.
	_, err := o.Upload(context.Background(), "next.pdf", []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected an extraction error for garbage bytes")
	}

	snapshot := o.Snapshot()
	if snapshot.Stage != StageAwaitingUpload {
		t.Errorf("expected AwaitingUpload, got %v", snapshot.Stage)
	}
	if snapshot.Book != nil || snapshot.Table != nil || len(snapshot.Appendices) != 0 {
		t.Error("book, table, and appendices must all be discarded")
	}
	// The credential survives a new upload.
	if snapshot.Provider != "dispatch" {
		t.Error("the validated credential must survive a new upload")
	}
}

func TestSnapshotCopiesAppendices(t *testing.T) {
	provider := &dispatchProvider{
		analysisJSON: testTableJSON,
		generateText: "content",
	}
	o := newTestOrchestrator(t, provider, StageGenerated)

	snapshot := o.Snapshot()
	snapshot.Appendices["GROUP_A"].Content = "mutated"

	stored, _ := o.Appendix("GROUP_A")
	if stored.Content == "mutated" {
		t.Error("snapshot appendices must be copies")
	}
}
