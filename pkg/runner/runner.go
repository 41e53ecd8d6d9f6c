package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/yaklabco/pyfmt/internal/logging"
	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/textdiff"
)

// Runner formats many files concurrently with one Formatter.
type Runner struct {
	Formatter *formatter.Formatter
}

// New creates a Runner around f.
func New(f *formatter.Formatter) *Runner {
	return &Runner{Formatter: f}
}

// Run discovers files under opts.Paths and formats them concurrently.
// Outcomes come back in deterministic path order regardless of worker
// scheduling.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	log := logging.FromContext(ctx)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	var cache *Cache
	if !opts.NoCache && !opts.WriteBack.IsDiff() {
		cache, err = OpenCache(opts.Mode)
		if err != nil {
			log.Debug("cache unavailable", logging.FieldError, err)
			cache = nil
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}
	log.Debug("starting run",
		logging.FieldFiles, len(files),
		logging.FieldJobs, jobs,
		logging.FieldWriteBack, opts.WriteBack.String(),
		logging.FieldFast, opts.Fast)

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts, cache)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			log.Debug("cache not saved", logging.FieldError, err)
		}
	}

	log.Debug("run complete",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldReformatted, result.Stats.Reformatted,
		logging.FieldUnchanged, result.Stats.Unchanged,
		logging.FieldFailed, result.Stats.Failed,
		logging.FieldCacheHits, result.Stats.CacheHits)

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	opts Options,
	cache *Cache,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.processFile(path, opts, cache)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// processFile formats one file and applies the write-back policy.
func (r *Runner) processFile(path string, opts Options, cache *Cache) FileOutcome {
	outcome := FileOutcome{Path: path}

	if cache.IsClean(path) {
		outcome.Cached = true
		return outcome
	}

	data, err := os.ReadFile(path)
	if err != nil {
		outcome.Error = fmt.Errorf("read %s: %w", path, err)
		return outcome
	}
	src := string(data)

	mode := opts.Mode
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pyi":
		mode.IsPyi = true
	case ".ipynb":
		mode.IsIpynb = true
	}

	var dst string
	if mode.IsIpynb {
		dst, err = r.Formatter.FormatIpynb(src, mode, opts.Fast)
	} else {
		dst, err = r.Formatter.FormatFileContents(src, mode, opts.Fast)
	}
	if errors.Is(err, formatter.ErrNothingChanged) {
		cache.MarkClean(path)
		return outcome
	}
	if err != nil {
		outcome.Error = fmt.Errorf("cannot format %s: %w", path, err)
		return outcome
	}

	outcome.Changed = true
	switch opts.WriteBack {
	case WriteBackYes:
		if err := writeFile(path, dst); err != nil {
			outcome.Changed = false
			outcome.Error = fmt.Errorf("write %s: %w", path, err)
			return outcome
		}
		outcome.Written = true
		cache.MarkClean(path)
	case WriteBackDiff, WriteBackColorDiff:
		outcome.Diff = textdiff.Unified(src, dst, path+" (original)", path+" (formatted)")
	case WriteBackCheck:
		// Report only.
	}
	return outcome
}

// writeFile replaces path atomically within its directory.
func writeFile(path, contents string) error {
	info, err := os.Stat(path)
	perm := os.FileMode(0o644)
	if err == nil {
		perm = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pyfmt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, werr := tmp.WriteString(contents)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		if werr != nil {
			return werr
		}
		return cerr
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
