package runner

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscoverWalksDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, "stubs", "b.pyi"), "x: int\n")
	writeTestFile(t, filepath.Join(dir, "nb", "c.ipynb"), "{}\n")
	writeTestFile(t, filepath.Join(dir, "README.md"), "hi\n")
	writeTestFile(t, filepath.Join(dir, "data.txt"), "hi\n")

	files, err := Discover(context.Background(), Options{Paths: []string{dir}, WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "nb/c.ipynb", "stubs/b.pyi"}, relPaths(t, dir, files))
}

func TestDiscoverDefaultExcludes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, ".venv", "lib.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, ".git", "hook.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, "build", "gen.py"), "x = 1\n")

	files, err := Discover(context.Background(), Options{Paths: []string{dir}, WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, relPaths(t, dir, files))
}

func TestDiscoverExtendExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, "gen", "b.py"), "x = 1\n")

	files, err := Discover(context.Background(), Options{
		Paths:         []string{dir},
		WorkingDir:    dir,
		ExtendExclude: regexp.MustCompile(`/gen/`),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, relPaths(t, dir, files))
}

func TestDiscoverCustomInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")
	writeTestFile(t, filepath.Join(dir, "b.pyi"), "x: int\n")

	files, err := Discover(context.Background(), Options{
		Paths:      []string{dir},
		WorkingDir: dir,
		Include:    regexp.MustCompile(`\.pyi$`),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pyi"}, relPaths(t, dir, files))
}

func TestDiscoverExplicitFileBypassesInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "script"), "x = 1\n")

	files, err := Discover(context.Background(), Options{
		Paths:      []string{"script"},
		WorkingDir: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"script"}, relPaths(t, dir, files))
}

func TestDiscoverForceExcludeAppliesToExplicitFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "skipme.py"), "x = 1\n")

	files, err := Discover(context.Background(), Options{
		Paths:        []string{"skipme.py"},
		WorkingDir:   dir,
		ForceExclude: regexp.MustCompile(`/skipme\.py$`),
	})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")

	files, err := Discover(context.Background(), Options{
		Paths:      []string{dir, "a.py"},
		WorkingDir: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, relPaths(t, dir, files))
}

func TestDiscoverMissingPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Discover(context.Background(), Options{
		Paths:      []string{"nope.py"},
		WorkingDir: dir,
	})
	assert.Error(t, err)
}
