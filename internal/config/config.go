package config

import (
	"log"
	"os"
	"strings"
	"time"

	"license-gate/internal/license"
)

type Config struct {
	ListURL            string        // remote allow-list location
	CachePath          string        // cache record file; empty keeps the cache in memory
	CacheTTL           time.Duration // freshness horizon of the cache record
	FetchTimeout       time.Duration // bound for a single remote fetch
	FetchRetryInterval time.Duration // min spacing of fetch attempts while the source fails
	UserAgent          string        // User-Agent sent to the remote source
	FailClosed         bool          // deny instead of allowing the current host when nothing is known
	TrustProxyHeaders  bool          // trust X-Forwarded-For / X-Real-IP in access logs

	UpstreamURL  string // protected application behind a reverse proxy
	SiteRoot     string // static directory served when no upstream is set
	BrandingFile string // optional YAML overriding the block page texts

	Branding Branding
}

func Load(logger *log.Logger) Config {
	c := Config{
		ListURL:            "https://raw.githubusercontent.com/kullanici_adi/depo_adi/main/license_list.txt",
		CachePath:          "license_cache.json",
		CacheTTL:           license.DefaultCacheTTL,
		FetchTimeout:       license.DefaultFetchTimeout,
		FetchRetryInterval: license.DefaultFetchRetryInterval,
		UserAgent:          license.DefaultUserAgent,
		SiteRoot:           "./public",
		Branding:           DefaultBranding(),
	}
	if v := os.Getenv("LICENSE_LIST_URL"); v != "" {
		c.ListURL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("LICENSE_CACHE_PATH"); ok {
		c.CachePath = strings.TrimSpace(v)
	}
	if v := os.Getenv("LICENSE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.CacheTTL = d
		} else if err != nil {
			logger.Printf("config: invalid LICENSE_CACHE_TTL=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LICENSE_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.FetchTimeout = d
		} else if err != nil {
			logger.Printf("config: invalid LICENSE_FETCH_TIMEOUT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LICENSE_FETCH_MIN_INTERVAL"); v != "" {
		// 0 disables the retry throttle
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.FetchRetryInterval = d
		} else if err != nil {
			logger.Printf("config: invalid LICENSE_FETCH_MIN_INTERVAL=%q: %v", v, err)
		}
	}
	if v := os.Getenv("LICENSE_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("LICENSE_FAIL_CLOSED"); v != "" {
		c.FailClosed = parseBool(v)
	}
	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		c.TrustProxyHeaders = parseBool(v)
	}
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.UpstreamURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SITE_ROOT"); v != "" {
		c.SiteRoot = v
	}
	if v := os.Getenv("BRANDING_FILE"); v != "" {
		c.BrandingFile = v
		b, err := LoadBranding(v)
		if err != nil {
			logger.Printf("config: branding file %q: %v", v, err)
		} else {
			c.Branding = b
		}
	}
	return c
}

func parseBool(v string) bool {
	vl := strings.ToLower(strings.TrimSpace(v))
	return vl == "1" || vl == "true" || vl == "yes" || vl == "on"
}
