package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"license-gate/internal/config"
	"license-gate/internal/handlers"
	"license-gate/internal/license"
	"license-gate/internal/middleware"
	"license-gate/internal/router"
	"license-gate/internal/storage"
	slogadapter "license-gate/internal/util/logadapter"
)

var version string

func loadDotEnv(logger *log.Logger, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		logger.Printf("dotenv: read error: %v", err)
		return
	}
	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		eq := bytes.IndexByte(raw, '=')
		if eq <= 0 {
			continue
		}
		key := string(raw[:eq])
		val := string(raw[eq+1:])
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, val)
		}
	}
}

// newCacheStore keeps the record in memory when no path is configured.
func newCacheStore(logger *log.Logger, cfg config.Config) license.CacheStore {
	if cfg.CachePath == "" {
		return storage.NewMemoryStore(cfg.CacheTTL)
	}
	return storage.NewFileStore(logger, cfg.CachePath, cfg.CacheTTL)
}

func main() {
	// version is injected via -ldflags "-X main.version=..."
	if version == "" {
		version = "dev"
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: false, ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))}
		}
		return a
	}})
	rootLogger := slog.New(handler)
	logger := slogadapter.New(rootLogger)

	loadDotEnv(logger, ".env")

	cfg := config.Load(logger)
	rootLogger.Info("effective_config",
		slog.String("list_url", cfg.ListURL),
		slog.String("cache_path", cfg.CachePath),
		slog.String("cache_ttl", cfg.CacheTTL.String()),
		slog.String("fetch_timeout", cfg.FetchTimeout.String()),
		slog.String("fetch_retry_interval", cfg.FetchRetryInterval.String()),
		slog.Bool("fail_closed", cfg.FailClosed),
		slog.Bool("trust_proxy_headers", cfg.TrustProxyHeaders),
		slog.String("upstream_url", cfg.UpstreamURL),
		slog.String("site_root", cfg.SiteRoot),
		slog.String("branding_file", cfg.BrandingFile),
	)
	middleware.SetTrustProxyHeaders(cfg.TrustProxyHeaders)

	fetcher := license.NewHTTPFetcher(logger, cfg.ListURL)
	fetcher.UserAgent = cfg.UserAgent
	fetcher.Client = &http.Client{Timeout: cfg.FetchTimeout}

	gate := license.New(newCacheStore(logger, cfg), fetcher,
		license.WithLogger(logger),
		license.WithFailClosed(cfg.FailClosed),
		license.WithFetchTimeout(cfg.FetchTimeout),
		license.WithFetchRetryInterval(cfg.FetchRetryInterval),
	)

	page, err := handlers.NewBlockPage(cfg.Branding, logger)
	if err != nil {
		rootLogger.Error("block page", slog.String("error", err.Error()))
		os.Exit(1)
	}
	app, err := router.NewApp(logger, cfg.UpstreamURL, cfg.SiteRoot)
	if err != nil {
		rootLogger.Error("protected app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	mux := router.New(logger, gate, page, app, version)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	if p := os.Getenv("PORT"); p != "" {
		srv.Addr = ":" + p
	}

	go func() {
		addr := srv.Addr
		url := "http://127.0.0.1" + addr
		if strings.HasPrefix(addr, "0.0.0.0:") {
			url = "http://127.0.0.1" + addr[len("0.0.0.0"):]
		} else if !strings.HasPrefix(addr, ":") {
			url = "http://" + addr
		}
		rootLogger.Info("server starting", slog.String("addr", addr), slog.String("url", url), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("listen error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	rootLogger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		rootLogger.Error("server shutdown error", slog.String("error", err.Error()))
	} else {
		rootLogger.Info("server stopped gracefully")
	}
}
