package webui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foresight_backend/export"
)

func newTestAPI(t *testing.T) (*PipelineAPI, *http.ServeMux) {
	t.Helper()
	store := NewSessionStore(testStoreConfig(), time.Hour, nil)
	api := NewPipelineAPI(store, 10*1024*1024, nil)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	return api, mux
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%q)", err, rec.Body.String())
	}
	return body
}

func TestStatusFreshSession(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Stage != "AwaitingCredential" {
		t.Errorf("fresh session stage = %q", body.Stage)
	}
	if len(body.Appendices) != 0 {
		t.Errorf("fresh session has %d appendices", len(body.Appendices))
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == PipelineSessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("first contact must set the session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
}

func TestSessionCookieReused(t *testing.T) {
	api, mux := newTestAPI(t)

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	cookies := first.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	mux.ServeHTTP(second, req)

	for _, c := range second.Result().Cookies() {
		if c.Name == PipelineSessionCookie {
			t.Error("known sessions must not get a fresh cookie")
		}
	}
	if api.sessions.Len() != 1 {
		t.Errorf("session count = %d, want 1", api.sessions.Len())
	}
}

func TestAnalyzeBeforeUploadRejected(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Kind != "InvalidTransition" {
		t.Errorf("error kind = %q", body.Kind)
	}
	if body.Action == "" {
		t.Error("errors must carry a remediation action")
	}
}

func TestCredentialMissingKey(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/credential", strings.NewReader(`{}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if !strings.Contains(body.Error, "api_key") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestUploadWithoutFileField(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGenerateRequiresGroupID(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"focus":"tech"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if !strings.Contains(body.Error, "group_id") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestExportTableBeforeAnalysis(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?target=table", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExportUnknownTarget(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?target=everything", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExportAppendixValidation(t *testing.T) {
	_, mux := newTestAPI(t)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"missing group", "/api/export?target=appendix&format=pdf", http.StatusBadRequest},
		{"bad format", "/api/export?target=appendix&group=GROUP_A&format=html", http.StatusBadRequest},
		{"unknown group", "/api/export?target=appendix&group=GROUP_A&format=pdf", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestSendDocumentRenderFailure(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	doc := export.Document{Title: "Empty Appendix", Content: "   "}
	api.sendDocument(rec, doc, export.FormatDocx)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %q)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != "" {
		t.Errorf("failed renders must not set attachment headers, got %q", got)
	}
	body := decodeError(t, rec)
	if body.Kind != "MalformedContent" {
		t.Errorf("error kind = %q", body.Kind)
	}
}

func TestSendDocumentSuccess(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	doc := export.Document{Title: "Ready Appendix", Content: "# Heading\n\nBody text."}
	api.sendDocument(rec, doc, export.FormatMarkdown)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "ready-appendix.md") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Error("successful exports must carry a body")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := newTestAPI(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/credential"},
		{http.MethodGet, "/api/upload"},
		{http.MethodGet, "/api/analyze"},
		{http.MethodGet, "/api/edit"},
		{http.MethodGet, "/api/generate"},
		{http.MethodPost, "/api/status"},
		{http.MethodPost, "/api/export"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}
}
