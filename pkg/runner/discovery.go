package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Discover resolves opts.Paths into the sorted list of files to format.
// Directories are walked recursively and filtered through the include
// and exclude patterns; files named explicitly skip the include check
// but still honor ForceExclude.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if info.IsDir() {
			discovered, err := walkDirectory(ctx, absPath, workDir, opts)
			if err != nil {
				return nil, err
			}
			for _, f := range discovered {
				add(f)
			}
			continue
		}

		// Explicit files bypass Include and the traversal excludes, but
		// never ForceExclude.
		if matchesPattern(relSpec(absPath, workDir, false), opts.ForceExclude) {
			continue
		}
		add(absPath)
	}

	sort.Strings(files)
	return files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// relSpec builds the match subject for a path: /-separated, relative to
// workDir, with a leading slash and a trailing slash for directories.
func relSpec(path, workDir string, isDir bool) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	spec := "/" + filepath.ToSlash(rel)
	if isDir {
		spec += "/"
	}
	return spec
}

func matchesPattern(spec string, pattern *regexp.Regexp) bool {
	return pattern != nil && pattern.MatchString(spec)
}

func excluded(spec string, opts Options) bool {
	return matchesPattern(spec, opts.effectiveExclude()) ||
		matchesPattern(spec, opts.ExtendExclude) ||
		matchesPattern(spec, opts.ForceExclude)
}

// walkDirectory recursively collects the formattable files under root.
func walkDirectory(ctx context.Context, root, workDir string, opts Options) ([]string, error) {
	include := opts.effectiveInclude()
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if excluded(relSpec(path, workDir, true), opts) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinked files format their targets; symlinked directories
		// are not followed.
		if entry.Type()&fs.ModeSymlink != 0 {
			real, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped silently
			}
			info, statErr := os.Stat(real)
			if statErr != nil || info.IsDir() {
				return nil
			}
		}

		spec := relSpec(path, workDir, false)
		if excluded(spec, opts) {
			return nil
		}
		if !include.MatchString(spec) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return files, nil
}
