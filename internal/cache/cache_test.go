// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tmsincomb/oscapify/pkg/types"
)

func TestKey(t *testing.T) {
	a := Key("ncbi.ConvertID", "12345678")
	b := Key("ncbi.ConvertID", "12345678")
	c := Key("ncbi.ConvertID", "87654321")

	if a != b {
		t.Error("same inputs must produce the same key")
	}
	if a == c {
		t.Error("different inputs must produce different keys")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := types.DOIResult{DOI: "10.1234/x", PMID: "12345678", PMCID: "PMC42"}
	if err := c.Set("k1", want, DefaultTTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got types.DOIResult
	if !c.Get("k1", &got) {
		t.Fatal("expected a cache hit")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	var missed types.DOIResult
	if c.Get("absent", &missed) {
		t.Error("expected a miss for an absent key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, size 1", stats)
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k1", types.DOIResult{DOI: "10.1/a"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got types.DOIResult
	if !reopened.Get("k1", &got) || got.DOI != "10.1/a" {
		t.Errorf("reopened cache Get = %+v, want persisted entry", got)
	}
}

func TestFlushPersistsCounters(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out types.DOIResult
	c.Get("miss", &out)
	c.RecordError()
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	stats := reopened.Stats()
	if stats.Misses != 1 || stats.Errors != 1 {
		t.Errorf("stats = %+v, want persisted 1 miss, 1 error", stats)
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k1", types.DOIResult{DOI: "10.1/a"}, time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	var out types.DOIResult
	if c.Get("k1", &out) {
		t.Error("expected expired entry to miss")
	}
	if c.Stats().Size != 0 {
		t.Error("expected expired entry to be evicted")
	}
}

func TestCleanupExpired(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("old", types.DOIResult{DOI: "10.1/a"}, time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("live", types.DOIResult{DOI: "10.2/b"}, DefaultTTL); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	removed, err := c.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if c.Stats().Size != 1 {
		t.Errorf("size = %d, want 1", c.Stats().Size)
	}
	if c.Stats().LastCleanup == nil {
		t.Error("expected LastCleanup to be set")
	}
}

func TestClear(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k1", types.DOIResult{DOI: "10.1/a"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Stats().Size != 0 {
		t.Error("expected empty cache after Clear")
	}
}

func TestCorruptCacheFileBackedUp(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doi_cache.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if c.Stats().Size != 0 {
		t.Error("expected corrupt cache to load as empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	backedUp := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "doi_cache.json.") && strings.HasSuffix(e.Name(), ".bak") {
			backedUp = true
		}
	}
	if !backedUp {
		t.Error("expected corrupt cache file to be renamed to a .bak backup")
	}
}
