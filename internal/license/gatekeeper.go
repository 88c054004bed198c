package license

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"license-gate/internal/metrics"
)

// Source names where the allow-list of a validation cycle came from.
type Source string

const (
	SourceCache      Source = "cache"
	SourceRemote     Source = "remote"
	SourceStaleCache Source = "stale-cache"
	SourcePermissive Source = "permissive"
	SourceClosed     Source = "closed"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonDevelopmentHost Reason = "development-host"
	ReasonLicensed        Reason = "licensed"
	ReasonNotLicensed     Reason = "not-licensed"
)

// DefaultFetchRetryInterval bounds how often an unreachable source is retried.
const DefaultFetchRetryInterval = 10 * time.Second

var errThrottled = errors.New("fetch throttled after recent failure")

// Decision is the structured outcome of a validation.
type Decision struct {
	Allowed           bool   `json:"allowed"`
	Reason            Reason `json:"reason"`
	CurrentDomain     string `json:"current_domain"`
	MatchedEntry      string `json:"matched_entry,omitempty"`
	RegistrableDomain string `json:"registrable_domain,omitempty"`
	Source            Source `json:"source"`
}

// Gatekeeper resolves the allow-list for a request and validates the host against it.
type Gatekeeper struct {
	cache      CacheStore
	fetcher    Fetcher
	logger     *log.Logger
	failClosed bool

	fetchTimeout time.Duration
	retry        *rate.Limiter
	failing atomic.Bool
	flight  singleflight.Group
}

type Option func(*Gatekeeper)

func WithLogger(l *log.Logger) Option {
	return func(g *Gatekeeper) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithFailClosed replaces the permissive fallback (allow the current host when
// neither the source nor a cache snapshot is available) with an empty list.
func WithFailClosed(v bool) Option {
	return func(g *Gatekeeper) { g.failClosed = v }
}

// WithFetchTimeout bounds a shared fetch independently of the requests waiting on it.
func WithFetchTimeout(d time.Duration) Option {
	return func(g *Gatekeeper) {
		if d > 0 {
			g.fetchTimeout = d
		}
	}
}

// WithFetchRetryInterval sets the minimum spacing of fetch attempts while the
// source is failing. Zero or negative disables the throttle.
func WithFetchRetryInterval(d time.Duration) Option {
	return func(g *Gatekeeper) {
		if d <= 0 {
			g.retry = rate.NewLimiter(rate.Inf, 1)
			return
		}
		g.retry = rate.NewLimiter(rate.Every(d), 1)
	}
}

func New(cache CacheStore, fetcher Fetcher, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		cache:   cache,
		fetcher: fetcher,
		logger:       log.New(io.Discard, "", 0),
		fetchTimeout: DefaultFetchTimeout,
		retry:        rate.NewLimiter(rate.Every(DefaultFetchRetryInterval), 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validation is a populated validation cycle for one host.
type Validation struct {
	CurrentDomain string
	Domains       AllowList
	Source        Source
}

// Prepare derives the current domain from host and resolves the allow-list:
// a valid cache, else a fresh fetch (saved to the cache), else the last cache
// snapshot, else the permissive single-entry list.
func (g *Gatekeeper) Prepare(ctx context.Context, host string) Validation {
	current := CurrentDomain(host)
	v := Validation{CurrentDomain: current}

	if g.cache.IsValid() {
		if domains, ok := g.cache.Load(); ok {
			metrics.LicenseCacheHitsTotal.Inc()
			v.Domains, v.Source = domains, SourceCache
			metrics.AllowlistSizeGauge.Set(float64(len(domains)))
			return v
		}
	}

	domains, err := g.refresh(ctx)
	if err == nil {
		v.Domains, v.Source = domains, SourceRemote
		return v
	}

	if domains, ok := g.cache.Load(); ok {
		g.logger.Printf("license: source unavailable, using cached snapshot (%d domains): %v", len(domains), err)
		v.Domains, v.Source = domains, SourceStaleCache
		return v
	}

	if g.failClosed {
		g.logger.Printf("WARN: license: source unavailable and no cache, failing closed: %v", err)
		v.Domains, v.Source = AllowList{}, SourceClosed
		return v
	}
	g.logger.Printf("WARN: license: source unavailable and no cache, temporarily allowing %s: %v", current, err)
	v.Domains, v.Source = AllowList{current}, SourcePermissive
	return v
}

// refresh fetches, parses and saves the remote list. Concurrent callers share
// one attempt and receive the same list. The attempt outlives the request that
// started it: a client going away must not count as a source failure.
func (g *Gatekeeper) refresh(ctx context.Context) (AllowList, error) {
	res, err, _ := g.flight.Do("list", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.fetchTimeout)
		defer cancel()
		raw, err := g.fetch(fctx)
		if err != nil {
			return nil, err
		}
		domains := Parse(raw)
		g.cache.Save(domains)
		metrics.AllowlistSizeGauge.Set(float64(len(domains)))
		return domains, nil
	})
	if err != nil {
		return nil, err
	}
	shared := res.(AllowList)
	domains := make(AllowList, len(shared))
	copy(domains, shared)
	return domains, nil
}

func (g *Gatekeeper) fetch(ctx context.Context) (string, error) {
	if g.failing.Load() && !g.retry.Allow() {
		metrics.LicenseFetchThrottledTotal.Inc()
		return "", errThrottled
	}
	raw, err := g.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", err
		}
		if !g.failing.Swap(true) {
			// start the retry window at the first failure
			g.retry.Allow()
		}
		return "", err
	}
	g.failing.Store(false)
	return raw, nil
}

// Validate decides whether the current domain is licensed.
func (v Validation) Validate() Decision {
	d := Decision{CurrentDomain: v.CurrentDomain, Source: v.Source}
	d.RegistrableDomain, _ = publicsuffix.EffectiveTLDPlusOne(v.CurrentDomain)

	if IsDevelopmentHost(v.CurrentDomain) {
		d.Allowed, d.Reason = true, ReasonDevelopmentHost
		return d
	}
	if entry, ok := v.Domains.Any(v.CurrentDomain); ok {
		d.Allowed, d.Reason, d.MatchedEntry = true, ReasonLicensed, entry
		return d
	}
	d.Reason = ReasonNotLicensed
	return d
}

// Check runs a full validation cycle for host.
func (g *Gatekeeper) Check(ctx context.Context, host string) Decision {
	d := g.Prepare(ctx, host).Validate()
	result := "allow"
	if !d.Allowed {
		result = "block"
	}
	metrics.LicenseDecisionsTotal.WithLabelValues(result, string(d.Reason), string(d.Source)).Inc()
	return d
}

// IsDevelopmentHost reports whether domain always bypasses validation.
func IsDevelopmentHost(domain string) bool {
	return domain == "localhost" || domain == "127.0.0.1"
}

// CurrentDomain derives the licensed name from a Host header value. An absent
// host means localhost; a port is dropped and one leading "www." is stripped.
func CurrentDomain(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return "localhost"
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}
