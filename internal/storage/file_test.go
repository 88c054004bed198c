package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"license-gate/internal/license"
)

func newTestFileStore(t *testing.T, now *time.Time) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "license_cache.json")
	s := NewFileStore(log.New(io.Discard, "", 0), path, time.Hour)
	s.Now = func() time.Time { return *now }
	return s
}

func TestFileStoreMissing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestFileStore(t, &now)
	if s.IsValid() {
		t.Fatalf("missing file must not be valid")
	}
	if d, ok := s.Load(); ok || len(d) != 0 {
		t.Fatalf("expected empty miss, got %v %v", d, ok)
	}
}

func TestFileStoreSaveLoadAndExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestFileStore(t, &now)
	s.Save(license.AllowList{"example.com", "shop.example.org"})

	data, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("cache is not json: %v", err)
	}
	if ts, _ := rec["timestamp"].(float64); int64(ts) != now.Unix() {
		t.Fatalf("unexpected timestamp %v", rec["timestamp"])
	}
	if _, err := os.Stat(s.Path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind")
	}

	if !s.IsValid() {
		t.Fatalf("fresh record must be valid")
	}
	d, ok := s.Load()
	if !ok || len(d) != 2 || d[0] != "example.com" {
		t.Fatalf("unexpected load %v %v", d, ok)
	}

	now = now.Add(time.Hour - time.Second)
	if !s.IsValid() {
		t.Fatalf("record younger than ttl must be valid")
	}
	now = now.Add(time.Second)
	if s.IsValid() {
		t.Fatalf("record exactly ttl old must be stale")
	}
	if _, ok := s.Load(); !ok {
		t.Fatalf("stale record must still load as a fallback snapshot")
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestFileStore(t, &now)
	for _, body := range []string{"{", `{"domains":["a.com"]}`, `{"timestamp":1700000000}`} {
		if err := os.WriteFile(s.Path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if s.IsValid() {
			t.Fatalf("%q: corrupt record must not be valid", body)
		}
		if d, ok := s.Load(); !ok || len(d) != 0 {
			t.Fatalf("%q: corrupt record must load as an existing empty list, got %v %v", body, d, ok)
		}
	}
}

type downFetcher struct{}

func (downFetcher) Fetch(context.Context) (string, error) {
	return "", fmt.Errorf("%w: connection refused", license.ErrUnavailable)
}

func TestCorruptCacheWithSourceDownBlocks(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestFileStore(t, &now)
	if err := os.WriteFile(s.Path, []byte(`{"timestamp": 1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	g := license.New(s, downFetcher{})

	d := g.Check(context.Background(), "evil.net")
	if d.Allowed || d.Source != license.SourceStaleCache {
		t.Fatalf("corrupt cache must yield an empty list, got %+v", d)
	}
	if !g.Check(context.Background(), "localhost").Allowed {
		t.Fatalf("development host must still pass")
	}
}

func TestFileStoreWriteFailureIsSilent(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// parent "directory" is a regular file, so every write fails
	s := NewFileStore(nil, filepath.Join(blocker, "cache.json"), time.Hour)
	s.Save(license.AllowList{"example.com"})
	if s.IsValid() {
		t.Fatalf("failed save must leave the store empty")
	}
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	s := NewFileStore(nil, path, time.Hour)
	s.Save(license.AllowList{"example.com"})
	if !s.IsValid() {
		t.Fatalf("expected record in nested directory")
	}
}
