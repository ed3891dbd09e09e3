package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheEntry is the on-disk cache record for one fetched page.
type cacheEntry struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache is a two-tier page cache: an in-memory map in front of a
// directory of JSON files, one per URL, keyed by the SHA-256 of the URL.
//
// Entries expire after the configured TTL. Expired or unreadable disk
// files are deleted on access, so a corrupted cache heals itself over
// time. With an empty directory the cache is memory-only and vanishes
// with the process.
type Cache struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger

	mu  sync.RWMutex
	mem map[string]cacheEntry
}

// NewCache opens (and creates if needed) a cache rooted at dir. An empty
// dir disables the disk tier.
func NewCache(dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	return &Cache{
		dir:    dir,
		ttl:    ttl,
		logger: logger,
		mem:    make(map[string]cacheEntry),
	}, nil
}

// Get returns the cached body for the URL and whether a fresh entry was
// found. Disk hits are promoted to memory.
func (c *Cache) Get(rawURL string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.mem[rawURL]
	c.mu.RUnlock()
	if ok {
		if c.fresh(entry) {
			return entry.Body, true
		}
		c.evict(rawURL)
		return "", false
	}

	if c.dir == "" {
		return "", false
	}
	path := c.path(rawURL)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Debug("removing corrupt cache file", "path", path, "error", err)
		os.Remove(path)
		return "", false
	}
	if !c.fresh(entry) {
		os.Remove(path)
		return "", false
	}

	c.mu.Lock()
	c.mem[rawURL] = entry
	c.mu.Unlock()
	return entry.Body, true
}

// Set stores the body for the URL in both tiers. Disk write failures are
// logged and otherwise ignored; the memory tier still serves the entry.
func (c *Cache) Set(rawURL, body string) {
	entry := cacheEntry{URL: rawURL, Body: body, FetchedAt: time.Now()}

	c.mu.Lock()
	c.mem[rawURL] = entry
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.path(rawURL), data, 0o600); err != nil {
		c.logger.Debug("cache write failed", "url", rawURL, "error", err)
	}
}

func (c *Cache) fresh(entry cacheEntry) bool {
	if c.ttl <= 0 {
		return true
	}
	return time.Since(entry.FetchedAt) < c.ttl
}

func (c *Cache) evict(rawURL string) {
	c.mu.Lock()
	delete(c.mem, rawURL)
	c.mu.Unlock()
	if c.dir != "" {
		os.Remove(c.path(rawURL))
	}
}

func (c *Cache) path(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
