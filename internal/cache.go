package internal

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnolang/typelint/internal/types"
)

const cacheFileName = "lint_cache.gob"

// DefaultCacheMaxAge is how long a cache entry stays valid.
const DefaultCacheMaxAge = 24 * time.Hour

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type CacheEntry struct {
	Metadata    fileMetadata
	Fingerprint string // rules the issues were produced with
	Deps        string // hash of the dependency files
	Issues      []tt.Issue
	CreatedAt   time.Time
}

// Cache stores the issues found in each file and hands them back while
// the file, its dependency files and the active rules are unchanged.
type Cache struct {
	CacheDir string

	mutex    sync.Mutex
	entries  map[string]CacheEntry
	maxAge   time.Duration
	depFiles []string
	depsHash string
	dirty    bool
}

// NewCache loads the cache stored in cacheDir, creating the directory if
// needed. Entries are dropped once any of the dependency files changes.
func NewCache(cacheDir string, maxAge time.Duration, dependencyFiles ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   maxAge,
		depFiles: dependencyFiles,
	}
	cache.depsHash = cache.hashDependencies()

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil // no cache yet
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to disk if it changed since it was loaded.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// Set records the issues found in filename with the rules identified by
// fingerprint.
func (c *Cache) Set(filename, fingerprint string, issues []tt.Issue) error {
	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[filename] = CacheEntry{
		Metadata:    metadata,
		Fingerprint: fingerprint,
		Deps:        c.depsHash,
		Issues:      issues,
		CreatedAt:   time.Now(),
	}
	c.dirty = true
	return nil
}

// Get returns the issues cached for filename, if the entry is still valid.
func (c *Cache) Get(filename, fingerprint string) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}
	if c.isEntryInvalid(filename, fingerprint, entry) {
		delete(c.entries, filename)
		c.dirty = true
		return nil, false
	}
	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(filename, fingerprint string, entry CacheEntry) bool {
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	if entry.Fingerprint != fingerprint || entry.Deps != c.depsHash {
		return true
	}
	current, err := getFileMetadata(filename)
	return err != nil || current.Hash != entry.Metadata.Hash
}

// hashDependencies combines the hashes of the dependency files. A missing
// file hashes as empty, so creating it invalidates the cache.
func (c *Cache) hashDependencies() string {
	h := md5.New()
	for _, file := range c.depFiles {
		hash, err := getFileHash(file)
		if err != nil {
			hash = ""
		}
		fmt.Fprintf(h, "%s=%s\n", file, hash)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	c.dirty = true
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	m, err := getFileMetadata(filename)
	if err != nil {
		return "", err
	}
	return m.Hash, nil
}
