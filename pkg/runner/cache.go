package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/yaklabco/pyfmt/pkg/formatter"
)

// fingerprint identifies file contents cheaply. A file whose size and
// mtime both match its cached fingerprint is assumed clean.
type fingerprint struct {
	Size  int64 `msgpack:"size"`
	Mtime int64 `msgpack:"mtime"`
}

// Cache remembers which files were already clean under a given mode, so
// repeat runs skip them without reading their contents.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]fingerprint
	dirty   bool
}

// cacheDir resolves the directory holding cache files, honoring the
// PYFMT_CACHE_DIR override.
func cacheDir() (string, error) {
	if dir := os.Getenv("PYFMT_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pyfmt"), nil
}

// OpenCache loads the cache for mode, returning an empty cache when no
// file exists or it cannot be decoded.
func OpenCache(mode formatter.Mode) (*Cache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache directory: %w", err)
	}
	c := &Cache{
		path:    filepath.Join(dir, fmt.Sprintf("cache.%s.msgpack", mode.CacheKey())),
		entries: make(map[string]fingerprint),
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return c, nil
	}
	// A corrupt cache is discarded, never trusted.
	if err := msgpack.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]fingerprint)
	}
	return c, nil
}

func fileFingerprint(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}, err
	}
	return fingerprint{Size: info.Size(), Mtime: info.ModTime().UnixNano()}, nil
}

// IsClean reports whether path matches its cached fingerprint.
func (c *Cache) IsClean(path string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	cached, ok := c.entries[path]
	c.mu.Unlock()
	if !ok {
		return false
	}
	current, err := fileFingerprint(path)
	if err != nil {
		return false
	}
	return current == cached
}

// MarkClean records the current fingerprint of path.
func (c *Cache) MarkClean(path string) {
	if c == nil {
		return
	}
	fp, err := fileFingerprint(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[path] = fp
	c.dirty = true
	c.mu.Unlock()
}

// Save persists the cache when it changed. Failures are not fatal: the
// next run simply reformats more files.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(c.entries)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
