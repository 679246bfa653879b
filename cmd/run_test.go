package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRunFlags(t *testing.T) {
	t.Helper()
	runBrief = ""
	runBriefFile = ""
	runConstraints = ""
	runConstraintsFile = ""
	t.Cleanup(func() {
		runBrief = ""
		runBriefFile = ""
		runConstraints = ""
		runConstraintsFile = ""
	})
}

func TestBriefFromFlagsInline(t *testing.T) {
	resetRunFlags(t)
	runBrief = "EU freight operator."
	runConstraints = "Focus on pricing."

	brief, err := briefFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "EU freight operator.", brief.Text)
	assert.Equal(t, "Focus on pricing.", brief.Constraints)
}

func TestBriefFromFlagsFileWins(t *testing.T) {
	resetRunFlags(t)
	dir := t.TempDir()

	briefPath := filepath.Join(dir, "brief.txt")
	require.NoError(t, os.WriteFile(briefPath, []byte("Brief from file."), 0o644))
	constraintsPath := filepath.Join(dir, "constraints.txt")
	require.NoError(t, os.WriteFile(constraintsPath, []byte("Constraints from file."), 0o644))

	runBrief = "inline brief"
	runBriefFile = briefPath
	runConstraints = "inline constraints"
	runConstraintsFile = constraintsPath

	brief, err := briefFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "Brief from file.", brief.Text)
	assert.Equal(t, "Constraints from file.", brief.Constraints)
}

func TestBriefFromFlagsMissingBrief(t *testing.T) {
	resetRunFlags(t)
	runBrief = "   \n\t"

	_, err := briefFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brief is required")
}

func TestBriefFromFlagsMissingFile(t *testing.T) {
	resetRunFlags(t)
	runBriefFile = filepath.Join(t.TempDir(), "does-not-exist.txt")

	_, err := briefFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read brief file")
}
