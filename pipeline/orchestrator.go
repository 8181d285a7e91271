package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"foresight_backend/appendix"
	"foresight_backend/core"
	"foresight_backend/gateway"
	"foresight_backend/pdfprocessor"
	"foresight_backend/planning"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookSource is the extracted corpus of the currently loaded book. It exists
// only in memory; a new upload replaces it entirely.
type BookSource struct {
	// ID identifies this upload within the session.
	ID string `json:"id"`

	// Filename is the original upload name, for display only.
	Filename string `json:"filename"`

	// Pages is the page count reported by the document.
	Pages int `json:"pages"`

	// ExtractedPages is how many pages yielded text.
	ExtractedPages int `json:"extracted_pages"`

	// WordCount is the word count of the full extracted text, before any
	// truncation.
	WordCount int `json:"word_count"`

	// Corpus is the analysis-ready text, already truncated to the corpus
	// budget when the book exceeded it.
	Corpus string `json:"-"`

	// Truncated records whether Corpus lost content to the budget.
	Truncated bool `json:"truncated"`

	// Warning carries a non-fatal extraction advisory, e.g. a large file
	// notice. Empty when extraction was clean.
	Warning string `json:"warning,omitempty"`

	// ExtractedAt is when the extraction completed.
	ExtractedAt time.Time `json:"extracted_at"`
}

// Snapshot is a read-only view of a session for status reporting. Appendix
// entries are copies; mutating them does not touch the session.
type Snapshot struct {
	Stage           Stage
	GeneratingGroup string
	Book            *BookSource
	Table           *planning.Table
	Appendices      map[string]*appendix.Appendix
	Completed       map[Stage]bool
	Provider        string
	Model           string
}

// Orchestrator drives one session through the pipeline. All mutating calls
// are serialized: a second mutating call while one is in flight is rejected
// with a Busy error rather than queued. Reads are always allowed.
type Orchestrator struct {
	mu   sync.Mutex
	busy bool

	stage           Stage
	generatingGroup string
	completed       map[Stage]bool

	book       *BookSource
	table      *planning.Table
	appendices map[string]*appendix.Appendix

	cfg       *core.Config
	extractor *pdfprocessor.Extractor
	truncator *pdfprocessor.Truncator

	// Populated once a credential probe succeeds.
	client    *gateway.Client
	analyzer  *planning.Analyzer
	generator *appendix.Generator
	provider  string
	model     string

	// providerFactory builds the AI provider for a credential. Tests swap
	// in fakes here.
	providerFactory func(ctx context.Context, cfg *core.Config, apiKey string) (gateway.Provider, error)

	logger *zap.Logger
}

// NewOrchestrator creates a fresh session orchestrator in
// AwaitingCredential.
func NewOrchestrator(cfg *core.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		stage:      StageAwaitingCredential,
		completed:  make(map[Stage]bool),
		appendices: make(map[string]*appendix.Appendix),
		cfg:        cfg,
		extractor: pdfprocessor.NewExtractor(pdfprocessor.ExtractorConfig{
			MaxFileSize:         cfg.MaxFileSize,
			SoftFileSize:        cfg.SoftFileSize,
			MinExtractableChars: cfg.MinExtractableChars,
		}),
		truncator: pdfprocessor.NewTruncator(pdfprocessor.TruncatorConfig{
			MaxChars:     cfg.MaxCorpusChars,
			HeadFraction: cfg.HeadFraction,
			TailFraction: cfg.TailFraction,
		}),
		providerFactory: gateway.NewProviderFromConfig,
		logger:          logger,
	}
}

// acquire marks the session busy for one mutating operation. It returns a
// Busy error when another operation holds the slot.
func (o *Orchestrator) acquire(operation string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return NewBusyError(operation)
	}
	o.busy = true
	return nil
}

// release clears the busy flag.
func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// ValidateCredential probes the configured AI provider with the given key.
// On success the session's gateway client is (re)built and the session moves
// to AwaitingUpload. Re-validating later is rejected as an invalid
// transition; a session keeps its first working credential.
func (o *Orchestrator) ValidateCredential(ctx context.Context, apiKey string) error {
	if err := o.acquire("validate credential"); err != nil {
		return err
	}
	defer o.release()

	o.mu.Lock()
	if _, err := Transition(o.stage, EventCredentialValidated); err != nil {
		o.mu.Unlock()
		return err
	}
	o.mu.Unlock()

	provider, err := o.providerFactory(ctx, o.cfg, apiKey)
	if err != nil {
		return err
	}
	client := gateway.NewClientFromConfig(provider, o.cfg, o.logger)

	if err := client.ValidateCredential(ctx, o.cfg.AnalysisTimeout); err != nil {
		o.logger.Warn("credential probe failed", zap.Error(err))
		return err
	}
	model, err := client.WorkingModel(ctx, o.cfg.AnalysisTimeout)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.client = client
	o.analyzer = planning.NewAnalyzer(client, o.cfg.AnalysisTimeout, o.logger)
	o.generator = appendix.NewGenerator(client, o.cfg.GenerationTimeout, o.logger)
	o.provider = provider.Name()
	o.model = model
	o.stage, _ = Transition(o.stage, EventCredentialValidated)
	o.completed[StageAwaitingCredential] = true
	o.mu.Unlock()

	o.logger.Info("credential validated",
		zap.String("provider", o.provider),
		zap.String("model", model),
	)
	return nil
}

// Upload ingests a new book. Any previous book, table, and appendices are
// discarded before extraction runs; an extraction failure therefore leaves
// the session in AwaitingUpload with no stale derived state.
func (o *Orchestrator) Upload(ctx context.Context, filename string, data []byte) (*BookSource, error) {
	if err := o.acquire("upload"); err != nil {
		return nil, err
	}
	defer o.release()

	o.mu.Lock()
	next, err := Transition(o.stage, EventNewUpload)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.resetBookStateLocked()
	o.stage = next
	o.mu.Unlock()

	result, err := o.extractor.Extract(data)
	if err != nil {
		o.logger.Warn("extraction failed",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil, err
	}

	full := pdfprocessor.JoinPages(result.Pages)
	corpus := o.truncator.TruncateText(full)

	book := &BookSource{
		ID:             uuid.NewString(),
		Filename:       filename,
		Pages:          result.TotalPages,
		ExtractedPages: result.ExtractedPages,
		WordCount:      result.WordCount,
		Corpus:         corpus,
		Truncated:      len(corpus) < len(full),
		Warning:        result.Warning,
		ExtractedAt:    time.Now(),
	}

	o.mu.Lock()
	o.book = book
	o.stage, _ = Transition(o.stage, EventExtracted)
	o.completed[StageAwaitingUpload] = true
	o.mu.Unlock()

	o.logger.Info("book extracted",
		zap.String("book_id", book.ID),
		zap.String("filename", filename),
		zap.Int("pages", book.Pages),
		zap.Int("word_count", book.WordCount),
		zap.Bool("truncated", book.Truncated),
	)
	return book, nil
}

// Probe inspects an upload without ingesting it. It never changes session
// state.
func (o *Orchestrator) Probe(data []byte) (*pdfprocessor.Info, error) {
	return o.extractor.Probe(data)
}

// Analyze runs the structural analysis and installs the resulting planning
// table. On failure the session returns to Extracted with no table.
func (o *Orchestrator) Analyze(ctx context.Context) (*planning.Table, error) {
	if err := o.acquire("analyze"); err != nil {
		return nil, err
	}
	defer o.release()

	o.mu.Lock()
	next, err := Transition(o.stage, EventAnalysisRequested)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.stage = next
	corpus := o.book.Corpus
	analyzer := o.analyzer
	o.mu.Unlock()

	table, err := analyzer.Analyze(ctx, corpus)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.stage, _ = Transition(o.stage, EventAnalysisFailed)
		return nil, err
	}
	o.table = table
	o.stage, _ = Transition(o.stage, EventAnalyzed)
	o.completed[StageExtracted] = true
	return table, nil
}

// Edit applies a natural-language edit to the planning table. The new table
// replaces the old one atomically: a failed edit leaves the current table
// untouched.
func (o *Orchestrator) Edit(ctx context.Context, instruction string) (*planning.Table, error) {
	if err := o.acquire("edit table"); err != nil {
		return nil, err
	}
	defer o.release()

	o.mu.Lock()
	if _, err := Transition(o.stage, EventEditRequested); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	current := o.table
	analyzer := o.analyzer
	o.mu.Unlock()

	edited, err := analyzer.RequestEdit(ctx, current, instruction)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.table = edited
	o.mu.Unlock()

	o.logger.Info("planning table edited", zap.Int("groups", len(edited.Groups)))
	return edited, nil
}

// Generate produces the appendix for one chapter group. An existing appendix
// for the group is replaced wholesale; only its regeneration count carries
// over. On failure no appendix is stored and the session returns to
// Reviewing.
func (o *Orchestrator) Generate(ctx context.Context, req appendix.Request) (*appendix.Appendix, error) {
	if err := o.acquire("generate appendix"); err != nil {
		return nil, err
	}
	defer o.release()

	// Requests without explicit settings inherit the configured defaults
	// (TIME_HORIZON, WORD_COUNT) before the package constants apply.
	if strings.TrimSpace(req.TimeHorizon) == "" {
		req.TimeHorizon = o.cfg.TimeHorizon
	}
	if strings.TrimSpace(req.WordCount) == "" {
		req.WordCount = o.cfg.WordCount
	}

	o.mu.Lock()
	next, err := Transition(o.stage, EventGenerationRequested)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.stage = next
	o.generatingGroup = req.GroupID
	table := o.table
	corpus := o.book.Corpus
	prior := o.appendices[req.GroupID]
	generator := o.generator
	o.mu.Unlock()

	result, err := generator.Generate(ctx, table, req, corpus, prior)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.generatingGroup = ""
	if err != nil {
		o.stage, _ = Transition(o.stage, EventGenerationFailed)
		return nil, err
	}
	o.appendices[req.GroupID] = result
	o.stage, _ = Transition(o.stage, EventGenerated)
	o.completed[StageReviewing] = true
	return result, nil
}

// Appendix returns the stored appendix for a group, if any.
func (o *Orchestrator) Appendix(groupID string) (*appendix.Appendix, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.appendices[groupID]
	return a, ok
}

// Table returns the current planning table, or nil before analysis.
func (o *Orchestrator) Table() *planning.Table {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.table
}

// Stage returns the current pipeline stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// Snapshot returns a point-in-time view of the session for status
// reporting.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	appendices := make(map[string]*appendix.Appendix, len(o.appendices))
	for id, a := range o.appendices {
		copied := *a
		appendices[id] = &copied
	}
	completed := make(map[Stage]bool, len(o.completed))
	for stage, done := range o.completed {
		completed[stage] = done
	}

	return Snapshot{
		Stage:           o.stage,
		GeneratingGroup: o.generatingGroup,
		Book:            o.book,
		Table:           o.table,
		Appendices:      appendices,
		Completed:       completed,
		Provider:        o.provider,
		Model:           o.model,
	}
}

// resetBookStateLocked discards everything derived from the previous book.
// Caller holds the mutex.
func (o *Orchestrator) resetBookStateLocked() {
	o.book = nil
	o.table = nil
	o.appendices = make(map[string]*appendix.Appendix)
	o.generatingGroup = ""
	delete(o.completed, StageAwaitingUpload)
	delete(o.completed, StageExtracted)
	delete(o.completed, StageReviewing)
}
