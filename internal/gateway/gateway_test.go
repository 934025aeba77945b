package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/internal/manager"
	"github.com/obitus-ai/contextd/pkg/message"
)

// replayLoader is a canned buffer.Loader for resume tests.
type replayLoader struct{}

func (replayLoader) Load(context.Context, string) ([]buffer.PersistedMessage, error) {
	return []buffer.PersistedMessage{
		{Content: "replayed message", SenderKind: message.SenderUser, SenderID: "u-1"},
	}, nil
}

const testToken = "test-token"

func newTestGateway(t *testing.T, loader buffer.Loader) (*manager.Manager, *httptest.Server) {
	t.Helper()
	mgr := manager.New(manager.Config{}, nil, nil, nil, nil)
	g := New(Config{BearerToken: testToken}, mgr, loader, nil, nil, nil)
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)
	return mgr, srv
}

func doRequest(t *testing.T, method, url string, body []byte, authed bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthEndpointIsPublic(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	resp := doRequest(t, http.MethodGet, srv.URL+"/health", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", resp.StatusCode)
	}

	var health manager.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", health.Status)
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)

	resp := doRequest(t, http.MethodGet, srv.URL+"/stats", nil, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET /stats = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	wrongResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer func() { _ = wrongResp.Body.Close() }()
	if wrongResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong-token GET /stats = %d, want 401", wrongResp.StatusCode)
	}

	authed := doRequest(t, http.MethodGet, srv.URL+"/stats", nil, true)
	if authed.StatusCode != http.StatusOK {
		t.Errorf("authenticated GET /stats = %d, want 200", authed.StatusCode)
	}
}

func TestAdminEndpointsUnmountedWithoutToken(t *testing.T) {
	t.Parallel()

	mgr := manager.New(manager.Config{}, nil, nil, nil, nil)
	g := New(Config{}, mgr, nil, nil, nil, nil)
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)

	resp := doRequest(t, http.MethodGet, srv.URL+"/stats", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /stats without configured token = %d, want 404", resp.StatusCode)
	}
}

func TestAddMessageAndContextRoundtrip(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)

	body := []byte(`{"content":"When is the service?","sender_id":"u-1","sender_type":"user"}`)
	resp := doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/messages", body, true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("POST messages = %d, want 204", resp.StatusCode)
	}

	ctxResp := doRequest(t, http.MethodGet, srv.URL+"/conversations/conv-1/context", nil, true)
	if ctxResp.StatusCode != http.StatusOK {
		t.Fatalf("GET context = %d, want 200", ctxResp.StatusCode)
	}
	var payload struct {
		ConversationID string `json:"conversation_id"`
		Context        string `json:"context"`
	}
	if err := json.NewDecoder(ctxResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding context: %v", err)
	}
	if payload.ConversationID != "conv-1" {
		t.Errorf("conversation_id = %q, want conv-1", payload.ConversationID)
	}
	want := "CONVERSATION HISTORY:\n[u-1]: When is the service?"
	if payload.Context != want {
		t.Errorf("context = %q, want %q", payload.Context, want)
	}
}

func TestAddMessageValidation(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing content", `{"sender_type":"user"}`},
		{"bad sender type", `{"content":"x","sender_type":"robot"}`},
	}
	for _, tt := range tests {
		resp := doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/messages", []byte(tt.body), true)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, resp.StatusCode)
		}
	}
}

func TestBufferInfoNotFound(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	resp := doRequest(t, http.MethodGet, srv.URL+"/conversations/nope/", nil, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET unknown buffer = %d, want 404", resp.StatusCode)
	}
}

func TestForceSummarizeNotFound(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/conversations/nope/summarize", nil, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("POST summarize unknown = %d, want 404", resp.StatusCode)
	}
}

func TestClearConversation(t *testing.T) {
	t.Parallel()

	mgr, srv := newTestGateway(t, nil)
	body := []byte(`{"content":"hello","sender_type":"user"}`)
	doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/messages", body, true)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/conversations/conv-1/", nil, true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE = %d, want 204", resp.StatusCode)
	}
	if mgr.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", mgr.Len())
	}
}

func TestExportImportRoundtrip(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	body := []byte(`{"content":"exported message","sender_id":"u-1","sender_type":"user"}`)
	doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/messages", body, true)

	resp := doRequest(t, http.MethodGet, srv.URL+"/conversations/conv-1/export?metadata=true", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET export = %d, want 200", resp.StatusCode)
	}
	var export buffer.Export
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if export.MessageCount != 1 {
		t.Fatalf("export message_count = %d, want 1", export.MessageCount)
	}

	raw, _ := json.Marshal(export)
	mgr2, srv2 := newTestGateway(t, nil)
	imp := doRequest(t, http.MethodPut, srv2.URL+"/conversations/conv-1/import", raw, true)
	if imp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT import = %d, want 204", imp.StatusCode)
	}
	info, ok := mgr2.BufferInfo("conv-1")
	if !ok || info.MessageCount != 1 {
		t.Errorf("imported buffer info = %+v ok=%v, want 1 message", info, ok)
	}
}

func TestImportRejectsEmptyRecord(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	resp := doRequest(t, http.MethodPut, srv.URL+"/conversations/conv-1/import", []byte(`{}`), true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT empty import = %d, want 400", resp.StatusCode)
	}
}

func TestResumeWithoutStore(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/resume", nil, true)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("POST resume without store = %d, want 503", resp.StatusCode)
	}
}

func TestResumeWithStore(t *testing.T) {
	t.Parallel()

	loader := replayLoader{}
	_, srv := newTestGateway(t, loader)
	resp := doRequest(t, http.MethodPost, srv.URL+"/conversations/conv-1/resume", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST resume = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		Context string `json:"context"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding resume: %v", err)
	}
	want := "CONVERSATION HISTORY:\n[u-1]: replayed message"
	if payload.Context != want {
		t.Errorf("context = %q, want %q", payload.Context, want)
	}
}
