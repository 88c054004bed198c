package storage

import (
	"sync"
	"time"

	"license-gate/internal/license"
)

// MemoryStore keeps the cache record in process memory.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu     sync.RWMutex
	record *license.CacheRecord
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, Now: time.Now}
}

func (s *MemoryStore) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record != nil && s.record.Fresh(s.now(), s.TTL)
}

func (s *MemoryStore) Load() (license.AllowList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return license.AllowList{}, false
	}
	return append(license.AllowList{}, s.record.Domains...), true
}

func (s *MemoryStore) Save(domains license.AllowList) {
	rec := license.CacheRecord{
		Domains:   append(license.AllowList{}, domains...),
		Timestamp: s.now().Unix(),
	}
	s.mu.Lock()
	s.record = &rec
	s.mu.Unlock()
}

// Put installs a record with an explicit timestamp.
func (s *MemoryStore) Put(rec license.CacheRecord) {
	s.mu.Lock()
	s.record = &rec
	s.mu.Unlock()
}

func (s *MemoryStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
