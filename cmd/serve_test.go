package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/config"
	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/pipeline"
	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

const testFinalText = "QUESTIONS:\nQ1\nAxis: Market\nTitle: Demand\nHorizon: 24m\nQuestion: Will annual demand grow by 10%?\nWhy it matters: Capacity planning.\nDecision link: Fleet orders.\nSignal hints: Order books; spot rates.\n"

// fakeUpstream returns an OpenRouter-shaped completion server. Each call
// answers with content so every pipeline stage succeeds.
func fakeUpstream(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "gen-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20},
		})
	}))
}

func serveTestConfig() *config.Config {
	return &config.Config{
		Model: config.ModelConfig{Base: "anthropic/claude-opus-4.1"},
		Stages: config.StagesConfig{
			Research: config.StageConfig{Temperature: 0.2, MaxTokens: 1400, TimeoutSecs: 5},
			Generate: config.StageConfig{Temperature: 0.35, MaxTokens: 4200, TimeoutSecs: 5},
			Refresh:  config.StageConfig{Temperature: 0.15, MaxTokens: 3200, TimeoutSecs: 5},
		},
		Output: config.OutputConfig{Questions: 4, Refresh: false},
	}
}

func newTestRouter(t *testing.T, upstream *httptest.Server, c *config.Config) http.Handler {
	t.Helper()

	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })

	client := openrouter.NewClient("test-key", openrouter.WithBaseURL(upstream.URL))
	return newRouter(pipeline.New(c, client))
}

func TestServeHealth(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeRuns(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	payload, _ := json.Marshal(map[string]any{"brief": "EU freight operator expanding into rail."})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rr.Code)

	var result model.RunResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.Contains(t, result.Final, "Q1")
	// Refresh is off, so the final text is the draft.
	assert.Equal(t, result.Draft, result.Final)
}

func TestServeRunsInvalidBody(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestServeRunsEmptyBrief(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	payload, _ := json.Marshal(map[string]any{"brief": "   "})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeRunsUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	payload, _ := json.Marshal(map[string]any{"brief": "EU freight operator."})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestServeRunsDoesNotMutateSharedConfig(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	c := serveTestConfig()
	router := newTestRouter(t, upstream, c)

	payload, _ := json.Marshal(map[string]any{"brief": "EU freight operator.", "questions": 8})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 4, c.Output.Questions)
}

func TestServeExportCSV(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	payload, _ := json.Marshal(map[string]string{"final": testFinalText})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/export/csv", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(model.Columns, ","), lines[0])
	assert.Contains(t, lines[1], "Q1")
}

func TestServeExportXLSX(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()
	router := newTestRouter(t, upstream, serveTestConfig())

	payload, _ := json.Marshal(map[string]string{"final": testFinalText})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/export/xlsx", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty brief", model.ErrEmptyBrief, http.StatusBadRequest},
		{"upstream", &openrouter.UpstreamError{Status: 503, Body: "overloaded"}, http.StatusBadGateway},
		{"transport", &openrouter.TransportError{Err: http.ErrHandlerTimeout}, http.StatusBadGateway},
		{"other", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
