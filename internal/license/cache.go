package license

import (
	"encoding/json"
	"errors"
	"time"
)

// DefaultCacheTTL is how long a cached allow-list is served without refetching.
const DefaultCacheTTL = time.Hour

// CacheStore persists the last successfully fetched AllowList.
// Implementations never surface I/O failures: a broken store behaves like an empty one.
type CacheStore interface {
	// IsValid reports whether a well-formed record exists and is younger than the TTL.
	IsValid() bool
	// Load returns the cached domains; ok is false only when no record exists.
	// A malformed record exists with an empty list.
	Load() (domains AllowList, ok bool)
	// Save overwrites the record with domains stamped at the current time.
	Save(domains AllowList)
}

// CacheRecord is the on-disk cache shape.
type CacheRecord struct {
	Domains   AllowList `json:"domains"`
	Timestamp int64     `json:"timestamp"`
}

var errMalformedRecord = errors.New("malformed cache record")

// DecodeRecord parses a cache record, requiring both the domains list and the timestamp.
func DecodeRecord(data []byte) (CacheRecord, error) {
	var raw struct {
		Domains   *[]string `json:"domains"`
		Timestamp *float64  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return CacheRecord{}, err
	}
	if raw.Domains == nil || raw.Timestamp == nil {
		return CacheRecord{}, errMalformedRecord
	}
	return CacheRecord{Domains: AllowList(*raw.Domains), Timestamp: int64(*raw.Timestamp)}, nil
}

// EncodeRecord serializes domains with the given timestamp.
func EncodeRecord(domains AllowList, now time.Time) ([]byte, error) {
	if domains == nil {
		domains = AllowList{}
	}
	return json.Marshal(CacheRecord{Domains: domains, Timestamp: now.Unix()})
}

// Fresh reports whether the record is younger than ttl at now. A record
// exactly ttl old is stale.
func (c CacheRecord) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(c.Timestamp, 0)) < ttl
}
