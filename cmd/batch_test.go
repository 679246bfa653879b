package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forecast-cli/internal/pipeline"
	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "briefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBatchFile(t *testing.T) {
	path := writeBatchFile(t, `
briefs:
  - name: freight
    brief: EU freight operator.
    constraints: Focus on pricing.
  - name: blank
    brief: "   "
  - name: grocer
    brief: Nordic grocery chain.
`)

	entries, err := loadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "freight", entries[0].Name)
	assert.Equal(t, "Focus on pricing.", entries[0].Constraints)
	assert.Equal(t, "grocer", entries[1].Name)
}

func TestLoadBatchFileNoUsableEntries(t *testing.T) {
	path := writeBatchFile(t, `
briefs:
  - name: blank
    brief: ""
`)

	_, err := loadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable entries")
}

func TestLoadBatchFileMissing(t *testing.T) {
	_, err := loadBatchFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read briefs file")
}

func TestLoadBatchFileBadYAML(t *testing.T) {
	path := writeBatchFile(t, "briefs: [not: {valid")
	_, err := loadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse briefs file")
}

func TestProcessBatch(t *testing.T) {
	upstream := fakeUpstream(t, testFinalText)
	defer upstream.Close()

	c := serveTestConfig()
	client := openrouter.NewClient("test-key", openrouter.WithBaseURL(upstream.URL))
	p := pipeline.New(c, client)

	outDir := t.TempDir()
	entries := []batchEntry{
		{Name: "freight", Brief: "EU freight operator."},
		{Name: "grocer", Brief: "Nordic grocery chain."},
	}

	err := processBatch(context.Background(), p, entries, 2, outDir)
	require.NoError(t, err)

	for _, name := range []string{"freight", "grocer"} {
		matches, err := filepath.Glob(filepath.Join(outDir, name, "strategic_questions_*.csv"))
		require.NoError(t, err)
		assert.Len(t, matches, 1, "expected one csv export for %s", name)
	}
}

func TestProcessBatchPartialFailure(t *testing.T) {
	// Fail any request whose prompt mentions the poisoned brief; the other
	// entry must still complete and export.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "POISON") {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "gen-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": testFinalText}},
			},
		})
	}))
	defer upstream.Close()

	c := serveTestConfig()
	client := openrouter.NewClient("test-key", openrouter.WithBaseURL(upstream.URL))
	p := pipeline.New(c, client)

	outDir := t.TempDir()
	entries := []batchEntry{
		{Name: "ok", Brief: "EU freight operator."},
		{Name: "bad", Brief: "POISON brief."},
	}

	err := processBatch(context.Background(), p, entries, 1, outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 runs failed")

	matches, globErr := filepath.Glob(filepath.Join(outDir, "ok", "strategic_questions_*.txt"))
	require.NoError(t, globErr)
	assert.Len(t, matches, 1)
}
