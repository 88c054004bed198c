package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load(log.New(io.Discard, "", 0))
	if c.CacheTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", c.CacheTTL)
	}
	if c.CachePath != "license_cache.json" || c.ListURL == "" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.FailClosed {
		t.Fatalf("fail-open is the default policy")
	}
	if c.Branding.Email == "" {
		t.Fatalf("expected default branding")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LICENSE_LIST_URL", "https://licenses.example/list.txt")
	t.Setenv("LICENSE_CACHE_PATH", "")
	t.Setenv("LICENSE_CACHE_TTL", "10m")
	t.Setenv("LICENSE_FETCH_TIMEOUT", "bogus")
	t.Setenv("LICENSE_FETCH_MIN_INTERVAL", "0s")
	t.Setenv("LICENSE_FAIL_CLOSED", "yes")
	t.Setenv("UPSTREAM_URL", " http://127.0.0.1:9000 ")

	c := Load(log.New(io.Discard, "", 0))
	if c.ListURL != "https://licenses.example/list.txt" {
		t.Fatalf("unexpected list url %q", c.ListURL)
	}
	if c.CachePath != "" {
		t.Fatalf("empty LICENSE_CACHE_PATH must select the memory cache, got %q", c.CachePath)
	}
	if c.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected ttl %s", c.CacheTTL)
	}
	if c.FetchTimeout != 5*time.Second {
		t.Fatalf("invalid timeout must keep default, got %s", c.FetchTimeout)
	}
	if c.FetchRetryInterval != 0 {
		t.Fatalf("expected throttle disabled, got %s", c.FetchRetryInterval)
	}
	if !c.FailClosed {
		t.Fatalf("expected fail closed")
	}
	if c.UpstreamURL != "http://127.0.0.1:9000" {
		t.Fatalf("unexpected upstream %q", c.UpstreamURL)
	}
}

func TestLoadBranding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branding.yaml")
	body := "lang: en\ntitle: License error\nemail: sales@example.com\nwhatsapp_url: \"\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BRANDING_FILE", path)
	c := Load(log.New(io.Discard, "", 0))
	b := c.Branding
	if b.Lang != "en" || b.Title != "License error" || b.Email != "sales@example.com" {
		t.Fatalf("branding not applied: %+v", b)
	}
	if b.WhatsAppURL != "" {
		t.Fatalf("explicit empty value must override default")
	}
	if b.Phone != DefaultBranding().Phone {
		t.Fatalf("absent keys must keep defaults")
	}
}

func TestLoadBrandingErrors(t *testing.T) {
	if _, err := LoadBranding(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("title: [unclosed"), 0o644)
	b, err := LoadBranding(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if b != DefaultBranding() {
		t.Fatalf("parse error must return defaults")
	}
}
