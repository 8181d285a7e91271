package webui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"foresight_backend/appendix"
	"foresight_backend/export"
	"foresight_backend/gateway"
	"foresight_backend/pdfprocessor"
	"foresight_backend/pipeline"
	"foresight_backend/planning"

	"go.uber.org/zap"
)

// PipelineSessionCookie carries the pipeline session ID.
const PipelineSessionCookie = "foresight_session"

// PipelineAPI exposes the pipeline over REST. Each browser session gets its
// own orchestrator; handlers resolve the session from a cookie, creating
// one on first contact.
//
// Endpoints:
//   - POST /api/credential - validate an AI credential
//   - POST /api/upload     - ingest a PDF book (multipart)
//   - POST /api/probe      - inspect a PDF without ingesting it
//   - POST /api/analyze    - run structural analysis
//   - POST /api/edit       - apply a natural-language table edit
//   - POST /api/generate   - generate one chapter group appendix
//   - GET  /api/status     - session snapshot for progress displays
//   - GET  /api/export     - download the table or an appendix
type PipelineAPI struct {
	sessions    *SessionStore
	maxUpload   int64
	secureCooky bool
	logger      *zap.Logger
}

// NewPipelineAPI creates the API bound to a session store.
func NewPipelineAPI(sessions *SessionStore, maxUpload int64, logger *zap.Logger) *PipelineAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineAPI{
		sessions:  sessions,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// RegisterRoutes attaches all API endpoints to the mux.
func (api *PipelineAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/credential", api.HandleCredential)
	mux.HandleFunc("/api/upload", api.HandleUpload)
	mux.HandleFunc("/api/probe", api.HandleProbe)
	mux.HandleFunc("/api/analyze", api.HandleAnalyze)
	mux.HandleFunc("/api/edit", api.HandleEdit)
	mux.HandleFunc("/api/generate", api.HandleGenerate)
	mux.HandleFunc("/api/status", api.HandleStatus)
	mux.HandleFunc("/api/export", api.HandleExport)
}

// entry resolves the caller's session, creating one when the cookie is
// missing or expired.
func (api *PipelineAPI) entry(w http.ResponseWriter, r *http.Request) (*SessionEntry, error) {
	if cookie, err := r.Cookie(PipelineSessionCookie); err == nil {
		if entry, ok := api.sessions.Get(cookie.Value); ok {
			return entry, nil
		}
	}

	entry, err := api.sessions.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     PipelineSessionCookie,
		Value:    entry.Session.ID,
		Path:     "/",
		MaxAge:   int(time.Until(entry.Session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   api.secureCooky,
		SameSite: http.SameSiteStrictMode,
	})
	return entry, nil
}

// HandleCredential handles POST /api/credential.
func (api *PipelineAPI) HandleCredential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid request body", "Send JSON with an api_key field")
		return
	}
	if payload.APIKey == "" {
		api.writeError(w, http.StatusBadRequest, "api_key is required", "Provide your AI provider API key")
		return
	}

	if err := entry.Orchestrator.ValidateCredential(r.Context(), payload.APIKey); err != nil {
		api.writeDomainError(w, err)
		return
	}

	snapshot := entry.Orchestrator.Snapshot()
	api.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "validated",
		"provider": snapshot.Provider,
		"model":    snapshot.Model,
	})
}

// UploadResponse describes an ingested book.
type UploadResponse struct {
	BookID         string `json:"book_id"`
	Filename       string `json:"filename"`
	Pages          int    `json:"pages"`
	ExtractedPages int    `json:"extracted_pages"`
	WordCount      int    `json:"word_count"`
	Truncated      bool   `json:"truncated"`
	Warning        string `json:"warning,omitempty"`
}

// HandleUpload handles POST /api/upload with a multipart "file" field.
func (api *PipelineAPI) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	filename, data, err := api.readUpload(r)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error(), "Upload a PDF file in the 'file' form field")
		return
	}

	book, err := entry.Orchestrator.Upload(r.Context(), filename, data)
	if err != nil {
		api.writeDomainError(w, err)
		return
	}

	api.writeJSON(w, http.StatusOK, UploadResponse{
		BookID:         book.ID,
		Filename:       book.Filename,
		Pages:          book.Pages,
		ExtractedPages: book.ExtractedPages,
		WordCount:      book.WordCount,
		Truncated:      book.Truncated,
		Warning:        book.Warning,
	})
}

// HandleProbe handles POST /api/probe. It inspects an upload without
// changing session state.
func (api *PipelineAPI) HandleProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	_, data, err := api.readUpload(r)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error(), "Upload a PDF file in the 'file' form field")
		return
	}

	info, err := entry.Orchestrator.Probe(data)
	if err != nil {
		api.writeDomainError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, info)
}

// AnalyzeResponse carries the planning table and any coverage warnings.
type AnalyzeResponse struct {
	Table    *planning.Table `json:"table"`
	Warnings []string        `json:"warnings,omitempty"`
}

// HandleAnalyze handles POST /api/analyze.
func (api *PipelineAPI) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	table, err := entry.Orchestrator.Analyze(r.Context())
	if err != nil {
		api.writeDomainError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, AnalyzeResponse{Table: table, Warnings: table.Warnings})
}

// HandleEdit handles POST /api/edit with a JSON instruction payload.
func (api *PipelineAPI) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	var payload struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid request body", "Send JSON with an instruction field")
		return
	}

	table, err := entry.Orchestrator.Edit(r.Context(), payload.Instruction)
	if err != nil {
		api.writeDomainError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, AnalyzeResponse{Table: table, Warnings: table.Warnings})
}

// GenerateResponse describes one generated appendix.
type GenerateResponse struct {
	GroupID       string    `json:"group_id"`
	Status        string    `json:"status"`
	WordCount     int       `json:"word_count"`
	Regenerations int       `json:"regenerations"`
	GeneratedAt   time.Time `json:"generated_at"`
	Content       string    `json:"content"`
}

// HandleGenerate handles POST /api/generate.
func (api *PipelineAPI) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	var payload struct {
		GroupID     string `json:"group_id"`
		TimeHorizon string `json:"time_horizon"`
		WordCount   string `json:"word_count"`
		Focus       string `json:"focus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid request body", "Send JSON with a group_id field")
		return
	}
	if payload.GroupID == "" {
		api.writeError(w, http.StatusBadRequest, "group_id is required", "Name the chapter group to generate")
		return
	}

	result, err := entry.Orchestrator.Generate(r.Context(), appendix.Request{
		GroupID:       payload.GroupID,
		TimeHorizon:   payload.TimeHorizon,
		WordCount:     payload.WordCount,
		FocusOverride: payload.Focus,
	})
	if err != nil {
		api.writeDomainError(w, err)
		return
	}

	api.writeJSON(w, http.StatusOK, GenerateResponse{
		GroupID:       result.GroupID,
		Status:        result.Status(),
		WordCount:     result.WordCount,
		Regenerations: result.Regenerations,
		GeneratedAt:   result.GeneratedAt,
		Content:       result.Content,
	})
}

// StatusResponse is the session snapshot for progress displays.
type StatusResponse struct {
	Stage           string               `json:"stage"`
	GeneratingGroup string               `json:"generating_group,omitempty"`
	Provider        string               `json:"provider,omitempty"`
	Model           string               `json:"model,omitempty"`
	Book            *pipeline.BookSource `json:"book,omitempty"`
	GroupCount      int                  `json:"group_count"`
	Appendices      []AppendixStatus     `json:"appendices"`
	Completed       map[string]bool      `json:"completed"`
}

// AppendixStatus summarizes one generated appendix without its content.
type AppendixStatus struct {
	GroupID       string    `json:"group_id"`
	Status        string    `json:"status"`
	WordCount     int       `json:"word_count"`
	Regenerations int       `json:"regenerations"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// HandleStatus handles GET /api/status.
func (api *PipelineAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	snapshot := entry.Orchestrator.Snapshot()

	response := StatusResponse{
		Stage:           snapshot.Stage.String(),
		GeneratingGroup: snapshot.GeneratingGroup,
		Provider:        snapshot.Provider,
		Model:           snapshot.Model,
		Book:            snapshot.Book,
		Completed:       make(map[string]bool, len(snapshot.Completed)),
		Appendices:      make([]AppendixStatus, 0, len(snapshot.Appendices)),
	}
	if snapshot.Table != nil {
		response.GroupCount = len(snapshot.Table.Groups)
	}
	for stage, done := range snapshot.Completed {
		response.Completed[stage.String()] = done
	}
	for _, groupID := range sortedAppendixIDs(snapshot.Appendices) {
		a := snapshot.Appendices[groupID]
		response.Appendices = append(response.Appendices, AppendixStatus{
			GroupID:       a.GroupID,
			Status:        a.Status(),
			WordCount:     a.WordCount,
			Regenerations: a.Regenerations,
			GeneratedAt:   a.GeneratedAt,
		})
	}

	api.writeJSON(w, http.StatusOK, response)
}

// HandleExport handles GET /api/export?target=table|appendix&group=&format=.
func (api *PipelineAPI) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	entry, err := api.entry(w, r)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "session could not be created", "")
		return
	}

	target := r.URL.Query().Get("target")
	switch target {
	case "table", "":
		api.exportTable(w, entry)
	case "appendix":
		api.exportAppendix(w, r, entry)
	default:
		api.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown export target %q", target),
			"Use target=table or target=appendix")
	}
}

// exportTable downloads the planning table as Markdown.
func (api *PipelineAPI) exportTable(w http.ResponseWriter, entry *SessionEntry) {
	table := entry.Orchestrator.Table()
	if table == nil {
		api.writeError(w, http.StatusNotFound, "no planning table exists yet", "Run analysis first")
		return
	}

	content := planning.ToMarkdown(table)
	w.Header().Set("Content-Type", export.FormatMarkdown.MIMEType())
	w.Header().Set("Content-Disposition", `attachment; filename="planning-table.md"`)
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// exportAppendix downloads one appendix in the requested format.
func (api *PipelineAPI) exportAppendix(w http.ResponseWriter, r *http.Request, entry *SessionEntry) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" {
		api.writeError(w, http.StatusBadRequest, "group is required", "Name the chapter group to export")
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error(), "Use format=markdown, docx, or pdf")
		return
	}

	result, ok := entry.Orchestrator.Appendix(groupID)
	if !ok {
		api.writeError(w, http.StatusNotFound,
			fmt.Sprintf("no appendix exists for group %q", groupID),
			"Generate the appendix first")
		return
	}

	snapshot := entry.Orchestrator.Snapshot()
	doc := export.Document{
		Title:       "Foresight Appendix " + groupID,
		GeneratedAt: result.GeneratedAt,
		Content:     result.Content,
	}
	if snapshot.Book != nil {
		doc.Source = snapshot.Book.Filename
	}

	api.sendDocument(w, doc, format)
}

// sendDocument renders into memory first so a failed render becomes an error
// response instead of a 200 with an empty attachment.
func (api *PipelineAPI) sendDocument(w http.ResponseWriter, doc export.Document, format export.Format) {
	var buf bytes.Buffer
	if err := export.Render(&buf, doc, format); err != nil {
		api.logger.Error("export failed",
			zap.String("title", doc.Title),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		api.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.MIMEType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.Filename(format)))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// readUpload pulls the uploaded file out of a multipart request, bounded by
// the configured maximum size.
func (api *PipelineAPI) readUpload(r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, api.maxUpload+1)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, fmt.Errorf("request is not valid multipart form data")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing 'file' form field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("upload could not be read")
	}
	return header.Filename, data, nil
}

func (api *PipelineAPI) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		api.logger.Error("response encoding failed", zap.Error(err))
	}
}

// errorResponse is the uniform error body: what failed and what the user
// can do about it.
type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func (api *PipelineAPI) writeError(w http.ResponseWriter, status int, message, action string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message, Action: action})
}

// writeDomainError maps pipeline, extraction, and gateway errors onto HTTP
// statuses with their remediation text.
func (api *PipelineAPI) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	response := errorResponse{Error: err.Error()}

	if orchErr, ok := pipeline.AsOrchestratorError(err); ok {
		response = errorResponse{
			Error:  orchErr.Message,
			Action: orchErr.Action,
			Kind:   orchErr.Kind.String(),
		}
		switch orchErr.Kind {
		case pipeline.KindBusy:
			status = http.StatusConflict
		default:
			status = http.StatusBadRequest
		}
	} else if extErr, ok := pdfprocessor.AsExtractionError(err); ok {
		response = errorResponse{
			Error:  extErr.Message,
			Action: extErr.Action,
			Kind:   extErr.Kind.String(),
		}
		if extErr.Kind == pdfprocessor.KindTooLarge {
			status = http.StatusRequestEntityTooLarge
		} else {
			status = http.StatusUnprocessableEntity
		}
	} else if gwErr, ok := gateway.AsError(err); ok {
		response = errorResponse{
			Error:  gwErr.Message,
			Action: gwErr.Action,
			Kind:   gwErr.Kind.String(),
		}
		switch gwErr.Kind {
		case gateway.KindInvalidCredential:
			status = http.StatusUnauthorized
		case gateway.KindQuotaExceeded, gateway.KindRateLimited:
			status = http.StatusTooManyRequests
		case gateway.KindInvalidRequest:
			status = http.StatusBadRequest
		default:
			status = http.StatusBadGateway
		}
	} else if exportErr, ok := export.AsExportError(err); ok {
		response = errorResponse{
			Error:  exportErr.Message,
			Action: exportErr.Action,
			Kind:   "MalformedContent",
		}
		status = http.StatusUnprocessableEntity
	} else if errors.Is(err, gateway.ErrNoJSONFound) {
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func sortedAppendixIDs(m map[string]*appendix.Appendix) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
