// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes DOI lookups in a JSON file with per-entry
// expiration and a sidecar stats document. A Cache is an explicit handle
// with an open → use → flush lifecycle, so callers can point different
// runs (and tests) at isolated directories.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheFileName = "doi_cache.json"
	statsFileName = "doi_cache_stats.json"

	// DefaultTTL is how long DOI entries stay valid. DOIs are immutable
	// once assigned, so a year is conservative.
	DefaultTTL = 365 * 24 * time.Hour
)

// entry is one cached value with its write time and optional expiry.
type entry struct {
	Value   json.RawMessage `json:"value"`
	Created time.Time       `json:"created"`
	Expires *time.Time      `json:"expires,omitempty"`
}

// counters are the cumulative statistics persisted in the sidecar file.
type counters struct {
	Hits        int        `json:"hits"`
	Misses      int        `json:"misses"`
	Errors      int        `json:"errors"`
	LastCleanup *time.Time `json:"last_cleanup,omitempty"`
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Size        int        `yaml:"size"`
	Hits        int        `yaml:"hits"`
	Misses      int        `yaml:"misses"`
	Errors      int        `yaml:"errors"`
	HitRate     string     `yaml:"hit_rate"`
	LastCleanup *time.Time `yaml:"last_cleanup,omitempty"`
	Path        string     `yaml:"path"`
}

// Cache is a file-backed key-value store for lookup results. It assumes a
// single writer; writes go through a temp file and atomic rename so
// readers never observe partial state.
type Cache struct {
	dir       string
	cachePath string
	statsPath string
	entries   map[string]entry
	counters  counters
	dirty     bool
}

// DefaultDir returns the user-level cache directory for oscapify.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache directory: %w", err)
	}
	return filepath.Join(base, "oscapify"), nil
}

// Open loads (or creates) the cache rooted at dir. A corrupt cache or
// stats file is renamed aside as a timestamped backup and treated as
// empty rather than failing the run.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	c := &Cache{
		dir:       dir,
		cachePath: filepath.Join(dir, cacheFileName),
		statsPath: filepath.Join(dir, statsFileName),
		entries:   map[string]entry{},
	}
	if !loadJSON(c.cachePath, &c.entries) || c.entries == nil {
		c.entries = map[string]entry{}
	}
	if !loadJSON(c.statsPath, &c.counters) {
		c.counters = counters{}
	}
	return c, nil
}

// Key derives the deterministic cache key for one lookup call: a hash of
// the function name and its ordered arguments, stable across restarts.
func Key(function string, args ...string) string {
	parts := append([]string{function}, args...)
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// Get unmarshals the cached value for key into out and reports whether a
// live entry was found. An expired entry counts as a miss and is evicted.
func (c *Cache) Get(key string, out any) bool {
	e, ok := c.entries[key]
	if ok && e.Expires != nil && time.Now().After(*e.Expires) {
		delete(c.entries, key)
		c.dirty = true
		ok = false
	}
	if !ok {
		c.counters.Misses++
		return false
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		c.counters.Errors++
		return false
	}
	c.counters.Hits++
	return true
}

// Set stores value under key with the given TTL (0 means no expiry) and
// persists the cache file.
func (c *Cache) Set(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	e := entry{Value: raw, Created: time.Now()}
	if ttl > 0 {
		expires := e.Created.Add(ttl)
		e.Expires = &expires
	}
	c.entries[key] = e
	c.dirty = false
	return saveJSON(c.cachePath, c.entries)
}

// RecordError bumps the cumulative error counter.
func (c *Cache) RecordError() {
	c.counters.Errors++
}

// CleanupExpired removes every expired entry and returns how many were
// dropped.
func (c *Cache) CleanupExpired() (int, error) {
	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.Expires != nil && now.After(*e.Expires) {
			delete(c.entries, key)
			removed++
		}
	}
	c.counters.LastCleanup = &now

	if removed > 0 {
		if err := saveJSON(c.cachePath, c.entries); err != nil {
			return removed, err
		}
	}
	return removed, saveJSON(c.statsPath, c.counters)
}

// Clear drops every entry and persists the empty cache.
func (c *Cache) Clear() error {
	c.entries = map[string]entry{}
	return saveJSON(c.cachePath, c.entries)
}

// Stats returns the current statistics view.
func (c *Cache) Stats() Stats {
	total := c.counters.Hits + c.counters.Misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.counters.Hits) / float64(total) * 100
	}
	return Stats{
		Size:        len(c.entries),
		Hits:        c.counters.Hits,
		Misses:      c.counters.Misses,
		Errors:      c.counters.Errors,
		HitRate:     fmt.Sprintf("%.1f%%", rate),
		LastCleanup: c.counters.LastCleanup,
		Path:        c.cachePath,
	}
}

// Flush persists the stats sidecar, plus the cache file when lazy
// eviction left it stale.
func (c *Cache) Flush() error {
	if c.dirty {
		if err := saveJSON(c.cachePath, c.entries); err != nil {
			return err
		}
		c.dirty = false
	}
	return saveJSON(c.statsPath, c.counters)
}

// loadJSON reads path into out and reports success. A missing file is a
// clean failure; a corrupt file is backed up aside with a timestamped
// name so a later run starts from empty state instead of aborting.
func loadJSON(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102_150405"))
		os.Rename(path, backup)
		return false
	}
	return true
}

// saveJSON writes data to path via a temp file and atomic rename.
func saveJSON(path string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(raw)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
