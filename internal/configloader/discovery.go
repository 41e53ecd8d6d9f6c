package configloader

import (
	"os"
	"path/filepath"
)

// Candidate configuration file names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var yamlConfigFiles = []string{
	".pyfmt.yaml",
	".pyfmt.yml",
}

// projectRootMarkers stop the upward search for configuration.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectRootMarkers = []string{".git", ".hg"}

// FindProjectConfig walks upward from workDir looking for a pyproject
// with a [tool.pyfmt] table or a .pyfmt.yaml. The search stops at the
// first VCS root or the filesystem root. An empty result means no
// project configuration exists.
func FindProjectConfig(workDir string) (string, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return "", err
	}
	for {
		if path := configIn(dir); path != "" {
			return path, nil
		}
		if isProjectRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func configIn(dir string) string {
	pyproject := filepath.Join(dir, "pyproject.toml")
	if hasPyfmtTable(pyproject) {
		return pyproject
	}
	for _, name := range yamlConfigFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func isProjectRoot(dir string) bool {
	for _, marker := range projectRootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	// A pyproject.toml marks a root even without a [tool.pyfmt] table.
	if _, err := os.Stat(filepath.Join(dir, "pyproject.toml")); err == nil {
		return true
	}
	return false
}
