package configloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadResult carries the resolved settings and where they came from.
type LoadResult struct {
	// Settings is nil when no configuration file applies.
	Settings *Settings

	// Path is the file the settings were read from.
	Path string
}

// Load resolves project settings. An explicit path (from --config) is
// used verbatim and must exist; otherwise the project tree above
// workDir is searched.
func Load(workDir, explicitPath string) (*LoadResult, error) {
	path := explicitPath
	if path == "" {
		found, err := FindProjectConfig(workDir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			return &LoadResult{}, nil
		}
		path = found
	}

	settings, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Settings: settings, Path: path}, nil
}

func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch {
	case strings.HasSuffix(path, ".toml"):
		return parsePyproject(path, data)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return parseYAML(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Base(path))
	}
}

// pyprojectFile models just enough of pyproject.toml to reach the
// [tool.pyfmt] table.
type pyprojectFile struct {
	Tool struct {
		Pyfmt *Settings `toml:"pyfmt"`
	} `toml:"tool"`
}

func parsePyproject(path string, data []byte) (*Settings, error) {
	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Tool.Pyfmt == nil {
		return &Settings{}, nil
	}
	return file.Tool.Pyfmt, nil
}

func parseYAML(path string, data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &settings, nil
}

// hasPyfmtTable reports whether path is a pyproject.toml containing a
// [tool.pyfmt] table.
func hasPyfmtTable(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return false
	}
	return file.Tool.Pyfmt != nil
}
