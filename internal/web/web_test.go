package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"researchai/internal/ui"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, "ResearchAI")
	return r
}

func TestIndexRendersWelcome(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<span>ResearchAI</span>")
	assert.Contains(t, body, "Checking Connection...")
	assert.Contains(t, body, "<li>Find and summarize academic papers</li>")
	assert.Contains(t, body, "AI Ethics Framework")
	assert.Contains(t, body, "ai-safety")
	assert.Contains(t, body, `id="pdf-button"`)
}

func TestStaticAssets(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/static/app.js", "/static/style.css"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Body.String(), path)
	}
}

func TestToViewSanitizes(t *testing.T) {
	view := toView(messageFixture("<script>alert(1)</script>hello"))
	assert.NotContains(t, string(view.Content), "<script")
	assert.Contains(t, string(view.Content), "hello")
	assert.Equal(t, "Research Assistant", view.Name)
	assert.Equal(t, "fa-robot", view.Icon)
}

func messageFixture(content string) ui.Message {
	return ui.Message{Role: ui.RoleAssistant, Content: content, Timestamp: time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)}
}
