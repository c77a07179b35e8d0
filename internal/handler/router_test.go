package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"researchai/internal/config"
	"researchai/internal/model"
	"researchai/internal/report"
	"researchai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	connected bool
	reply     string
	err       error
	calls     []string
}

func (f *fakeCompleter) Connected() bool { return f.connected }

func (f *fakeCompleter) Complete(_ context.Context, message string) (string, error) {
	f.calls = append(f.calls, message)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(ctx context.Context, entries []model.TranscriptEntry) ([]byte, error) {
	r.calls++
	return report.NewRenderer("Chat History Report").Render(ctx, entries)
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, []model.TranscriptEntry) ([]byte, error) {
	return nil, errors.New("font table corrupted")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	return cfg
}

func newTestRouter(t *testing.T, completer Completer, renderer ReportRenderer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if renderer == nil {
		renderer = report.NewRenderer("Chat History Report")
	}
	return NewRouter(testConfig(t), completer, renderer)
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatusReportsCredential(t *testing.T) {
	completer := &fakeCompleter{connected: true}
	r := newTestRouter(t, completer, nil)

	w := doJSON(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"connected":true}`, w.Body.String())

	completer.connected = false
	w = doJSON(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"connected":false}`, w.Body.String())
}

func TestMethodNotAllowedSkipsUpstream(t *testing.T) {
	completer := &fakeCompleter{connected: true, reply: "never"}
	r := newTestRouter(t, completer, nil)

	cases := []struct {
		method string
		path   string
		allow  string
	}{
		{http.MethodGet, "/api/chat", http.MethodPost},
		{http.MethodPut, "/api/chat", http.MethodPost},
		{http.MethodDelete, "/api/generate-pdf", http.MethodPost},
		{http.MethodGet, "/api/generate-pdf", http.MethodPost},
		{http.MethodPost, "/api/status", http.MethodGet},
	}
	for _, tc := range cases {
		w := doJSON(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, tc.allow, w.Header().Get("Allow"))
		assert.Equal(t, "Method not allowed", decodeError(t, w).Error)
	}
	assert.Empty(t, completer.calls)
}

func TestChatReturnsContent(t *testing.T) {
	completer := &fakeCompleter{reply: "<b>bold</b> answer"}
	r := newTestRouter(t, completer, nil)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "<b>bold</b> answer", resp.Content)
	assert.Equal(t, []string{"hello"}, completer.calls)
}

func TestChatBadRequests(t *testing.T) {
	completer := &fakeCompleter{reply: "x"}
	r := newTestRouter(t, completer, nil)

	for _, body := range []string{`not json`, `{}`, `{"message":null}`, `{"message":42}`, `{"message":["a"]}`} {
		w := doJSON(r, http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Bad request", decodeError(t, w).Error)
	}
	assert.Empty(t, completer.calls)
}

func TestChatBlankMessageForwarded(t *testing.T) {
	completer := &fakeCompleter{reply: "ask me anything"}
	r := newTestRouter(t, completer, nil)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"message":"   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":"ask me anything"}`, w.Body.String())
	assert.Equal(t, []string{"   "}, completer.calls)
}

func TestChatMissingCredentialWinsOverBlankMessage(t *testing.T) {
	factory, err := model.NewFactory(config.LLMConfig{Provider: "openai", Model: "sonar-medium-online"})
	require.NoError(t, err)
	r := newTestRouter(t, service.NewChatService(func() string { return "" }, factory), nil)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{"message":"hi"}`} {
		w := doJSON(r, http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.JSONEq(t, `{"error":"API key not configured"}`, w.Body.String(), body)
	}
}

func TestChatFailuresNeverReturn200(t *testing.T) {
	cases := []struct {
		err       error
		wantError string
	}{
		{service.ErrCredentialMissing, "API key not configured"},
		{&service.UpstreamError{Err: errors.New("401 invalid key")}, "API request failed"},
		{errors.New("boom"), "API request failed"},
	}
	for _, tc := range cases {
		r := newTestRouter(t, &fakeCompleter{err: tc.err}, nil)

		w := doJSON(r, http.MethodPost, "/api/chat", `{"message":"hi"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, tc.wantError, resp.Error)
		assert.NotContains(t, w.Body.String(), `"content"`)
	}

	r := newTestRouter(t, &fakeCompleter{err: &service.UpstreamError{Err: errors.New("401 invalid key")}}, nil)
	w := doJSON(r, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, "401 invalid key", decodeError(t, w).Details)
}

func TestChatEndToEndWithCompletionServer(t *testing.T) {
	var upstreamCalls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"first choice"}},{"index":1,"message":{"role":"assistant","content":"second"}}]}`)
	}))
	defer upstream.Close()

	factory, err := model.NewFactory(config.LLMConfig{Provider: "openai", BaseURL: upstream.URL, Model: "sonar-medium-online"})
	require.NoError(t, err)

	key := "test-key"
	chatService := service.NewChatService(func() string { return key }, factory)
	r := newTestRouter(t, chatService, nil)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"message":"what is a transformer?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":"first choice"}`, w.Body.String())

	key = ""
	w = doJSON(r, http.MethodPost, "/api/chat", `{"message":"again"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"API key not configured"}`, w.Body.String())
	assert.Equal(t, 1, upstreamCalls)
}

func TestGeneratePDF(t *testing.T) {
	r := newTestRouter(t, &fakeCompleter{}, nil)

	body := `{"chatHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello there"}]}`
	w := doJSON(r, http.MethodPost, "/api/generate-pdf", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=chat-history-report.pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestGeneratePDFEmptyHistory(t *testing.T) {
	r := newTestRouter(t, &fakeCompleter{}, nil)

	w := doJSON(r, http.MethodPost, "/api/generate-pdf", `{"chatHistory":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestGeneratePDFRejectsNonArray(t *testing.T) {
	renderer := &countingRenderer{}
	r := newTestRouter(t, &fakeCompleter{}, renderer)

	for _, body := range []string{`not json`, `{}`, `{"chatHistory":null}`, `{"chatHistory":"text"}`, `{"chatHistory":{"role":"user"}}`, `[]`} {
		w := doJSON(r, http.MethodPost, "/api/generate-pdf", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "chatHistory must be provided as an array", decodeError(t, w).Message)
	}
	assert.Zero(t, renderer.calls)

	w := doJSON(r, http.MethodPost, "/api/generate-pdf", `{"chatHistory":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, renderer.calls)
}

func TestGeneratePDFRejectsEntryWithoutRole(t *testing.T) {
	renderer := &countingRenderer{}
	r := newTestRouter(t, &fakeCompleter{}, renderer)

	for _, body := range []string{
		`{"chatHistory":[{"content":"orphan"}]}`,
		`{"chatHistory":[{"role":"user","content":"hi"},{"role":"  ","content":"x"}]}`,
	} {
		w := doJSON(r, http.MethodPost, "/api/generate-pdf", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "every chatHistory entry needs a role", decodeError(t, w).Message)
	}
	assert.Zero(t, renderer.calls)
}

func TestGeneratePDFFailure(t *testing.T) {
	r := newTestRouter(t, &fakeCompleter{}, failingRenderer{})

	w := doJSON(r, http.MethodPost, "/api/generate-pdf", `{"chatHistory":[]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "PDF generation failed", resp.Error)
	assert.Empty(t, resp.Details)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestGeneratePDFFailureDetailsInDevelopment(t *testing.T) {
	t.Setenv("RESEARCHAI_APP_ENV", "development")
	r := newTestRouter(t, &fakeCompleter{}, failingRenderer{})

	w := doJSON(r, http.MethodPost, "/api/generate-pdf", `{"chatHistory":[]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "font table corrupted", decodeError(t, w).Details)
}

func TestRequestIDEchoed(t *testing.T) {
	r := newTestRouter(t, &fakeCompleter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = doJSON(r, http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}
