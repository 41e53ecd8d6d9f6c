package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/render"
)

func newTestRunner() *Runner {
	return New(formatter.New(render.New()))
}

func defaultOptions(dir string) Options {
	return Options{
		Paths:      []string{dir},
		WorkingDir: dir,
		Mode:       formatter.DefaultMode(),
		NoCache:    true,
		Jobs:       2,
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunWriteBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dirty := filepath.Join(dir, "dirty.py")
	clean := filepath.Join(dir, "clean.py")
	writeTestFile(t, dirty, "x=1\n")
	writeTestFile(t, clean, "x = 1\n")

	opts := defaultOptions(dir)
	opts.WriteBack = WriteBackYes

	result, err := newTestRunner().Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.FilesDiscovered)
	assert.Equal(t, 1, result.Stats.Reformatted)
	assert.Equal(t, 1, result.Stats.Unchanged)
	assert.Equal(t, 0, result.Stats.Failed)
	assert.Equal(t, 0, result.ExitCode(opts.WriteBack))

	assert.Equal(t, "x = 1\n", readTestFile(t, dirty))
	assert.Equal(t, "x = 1\n", readTestFile(t, clean))
}

func TestRunCheckLeavesFilesAlone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	writeTestFile(t, path, "x=1\n")

	opts := defaultOptions(dir)
	opts.WriteBack = WriteBackCheck

	result, err := newTestRunner().Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Reformatted)
	assert.Equal(t, 1, result.ExitCode(opts.WriteBack))
	assert.Equal(t, "x=1\n", readTestFile(t, path))
}

func TestRunDiff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x=1\n")

	opts := defaultOptions(dir)
	opts.WriteBack = WriteBackDiff

	result, err := newTestRunner().Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	diff := result.Files[0].Diff
	assert.Contains(t, diff, "(original)")
	assert.Contains(t, diff, "(formatted)")
	assert.Contains(t, diff, "-x=1")
	assert.Contains(t, diff, "+x = 1")
	assert.Equal(t, "x=1\n", readTestFile(t, filepath.Join(dir, "a.py")))
}

func TestRunInvalidInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "bad.py"), "x = (1\n")
	writeTestFile(t, filepath.Join(dir, "good.py"), "x=1\n")

	opts := defaultOptions(dir)
	opts.WriteBack = WriteBackYes

	result, err := newTestRunner().Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.Reformatted)
	assert.True(t, result.HasInvalidInput())
	assert.False(t, result.HasInternalFault())
	assert.Equal(t, 1, result.ExitCode(opts.WriteBack))
}

func TestRunPyiMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "stub.pyi")
	writeTestFile(t, path, "x = 1\n\n\ny = 2\n")

	opts := defaultOptions(dir)
	opts.WriteBack = WriteBackYes

	result, err := newTestRunner().Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Reformatted)
	assert.Equal(t, "x = 1\n\ny = 2\n", readTestFile(t, path))
}

func TestRunUsesCache(t *testing.T) {
	t.Setenv("PYFMT_CACHE_DIR", t.TempDir())

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")

	opts := defaultOptions(dir)
	opts.NoCache = false
	opts.WriteBack = WriteBackYes

	runner := newTestRunner()
	result, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.CacheHits)

	result, err = runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.CacheHits)
	assert.Equal(t, 1, result.Stats.Unchanged)
}

func TestRunEmptyDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result, err := newTestRunner().Run(context.Background(), defaultOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.FilesDiscovered)
	assert.Equal(t, 0, result.ExitCode(WriteBackCheck))
}

func TestResultExitCodes(t *testing.T) {
	t.Parallel()

	var nilResult *Result
	assert.Equal(t, 0, nilResult.ExitCode(WriteBackCheck))

	r := &Result{}
	r.accumulate(FileOutcome{Path: "a.py", Changed: true})
	assert.Equal(t, 0, r.ExitCode(WriteBackYes))
	assert.Equal(t, 1, r.ExitCode(WriteBackCheck))

	r = &Result{}
	r.accumulate(FileOutcome{Path: "a.py", Error: &formatter.EquivalenceError{}})
	assert.Equal(t, 123, r.ExitCode(WriteBackYes))
}
