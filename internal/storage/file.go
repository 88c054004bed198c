package storage

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"license-gate/internal/license"
	"license-gate/internal/metrics"
)

// FileStore persists the cache record as a JSON file. Concurrent writers are
// not coordinated; the rename makes the last complete write win.
type FileStore struct {
	Path   string
	TTL    time.Duration
	Now    func() time.Time
	Logger *log.Logger
}

func NewFileStore(logger *log.Logger, path string, ttl time.Duration) *FileStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FileStore{Path: path, TTL: ttl, Now: time.Now, Logger: logger}
}

func (s *FileStore) IsValid() bool {
	rec, _, ok := s.read()
	return ok && rec.Fresh(s.now(), s.TTL)
}

// Load reports an unreadable or malformed file as an existing, empty record.
func (s *FileStore) Load() (license.AllowList, bool) {
	rec, exists, ok := s.read()
	if !ok {
		return license.AllowList{}, exists
	}
	return rec.Domains, true
}

func (s *FileStore) Save(domains license.AllowList) {
	data, err := license.EncodeRecord(domains, s.now())
	if err != nil {
		s.fail("encode", err)
		return
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.fail("ensure dir", err)
			return
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.fail("write tmp", err)
		return
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		s.fail("rename", err)
	}
}

// read returns the decoded record; exists is false only when there is no file.
func (s *FileStore) read() (rec license.CacheRecord, exists, ok bool) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return license.CacheRecord{}, false, false
	}
	if err == nil {
		rec, err = license.DecodeRecord(data)
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.Printf("license cache: ignoring %s: %v", s.Path, err)
		}
		return license.CacheRecord{}, true, false
	}
	return rec, true, true
}

func (s *FileStore) fail(op string, err error) {
	metrics.LicenseCacheWriteFailuresTotal.Inc()
	if s.Logger != nil {
		s.Logger.Printf("WARN: license cache: %s: %v", op, err)
	}
}

func (s *FileStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
