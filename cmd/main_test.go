package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against dir and returns stdout
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir, "-v", "1"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

// lastLine returns the final non-empty output line
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}

func TestCLI_CreateListRenameRemove(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "touch", "b.txt")
	assert.Contains(t, out, `added "b.txt" at row 0 of /`)
	bPath := lastLine(out)

	out = mustRun(t, dir, "mkdir", "a")
	assert.Contains(t, out, `added "a" at row 0 of /`)
	aPath := lastLine(out)

	out = mustRun(t, dir, "touch", "inside.md", aPath)
	assert.Contains(t, out, `added "inside.md" at row 0 of a`)
	assert.True(t, strings.HasPrefix(lastLine(out), aPath+"/"), "child id path extends the parent's")

	out = mustRun(t, dir, "ls")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0\td\ta\t"+aPath, lines[0])
	assert.Equal(t, "1\tf\tb.txt\t"+bPath, lines[1])

	out = mustRun(t, dir, "mv", bPath, "0.txt")
	assert.Contains(t, out, `renamed "0.txt": row 1 -> 0 of /`)

	out = mustRun(t, dir, "tree")
	assert.Equal(t, "/\n  0.txt\n  a/\n    inside.md\n", out)

	out = mustRun(t, dir, "rm", bPath)
	assert.Contains(t, out, `removed "0.txt" from row 0 of /`)

	_, err := run(t, dir, "resolve", bPath)
	assert.Error(t, err)

	out = mustRun(t, dir, "resolve", aPath)
	assert.Equal(t, "d\ta\t"+aPath+"\n", out)
}

func TestCLI_RootIDIsStable(t *testing.T) {
	dir := t.TempDir()

	first := mustRun(t, dir, "resolve", "/")
	second := mustRun(t, dir, "resolve", "/")
	assert.Equal(t, first, second)
	assert.FileExists(t, filepath.Join(dir, "repository.json"))
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	filePath := lastLine(mustRun(t, dir, "touch", "f"))

	tests := []struct {
		name string
		args []string
	}{
		{"bad id", []string{"resolve", "not-a-uuid"}},
		{"file as parent", []string{"touch", "x", filePath}},
		{"remove root", []string{"rm", "/"}},
		{"unknown backend", []string{"--backend", "tape", "tree"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCLI_BoltBackend(t *testing.T) {
	dir := t.TempDir()

	path := lastLine(mustRun(t, dir, "--backend", "bolt", "mkdir", "docs"))
	out := mustRun(t, dir, "--backend", "bolt", "resolve", path)

	assert.Equal(t, "d\tdocs\t"+path+"\n", out)
	assert.FileExists(t, filepath.Join(dir, "repository.db"))
}

func TestCLI_HelpAndCompletionLeaveStorageAlone(t *testing.T) {
	for _, args := range [][]string{
		{"help"},
		{"completion", "bash"},
		{"--backend", "bolt", "completion", "zsh"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			dir := t.TempDir()

			out := mustRun(t, dir, args...)

			assert.NotEmpty(t, out)
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "no document or database may be created")
		})
	}
}
