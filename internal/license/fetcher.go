package license

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"license-gate/internal/metrics"
)

// ErrUnavailable is returned when the remote list cannot be obtained for any reason.
var ErrUnavailable = errors.New("license list unavailable")

// Fetcher retrieves the raw license list.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

const (
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultFetchTimeout = 5 * time.Second

	maxListBytes = 1 << 20
)

// HTTPFetcher downloads the list with a single GET per call.
type HTTPFetcher struct {
	URL       string
	UserAgent string
	Client    *http.Client
	Logger    *log.Logger
}

func NewHTTPFetcher(logger *log.Logger, url string) *HTTPFetcher {
	return &HTTPFetcher{
		URL:       url,
		UserAgent: DefaultUserAgent,
		Client:    &http.Client{Timeout: DefaultFetchTimeout},
		Logger:    logger,
	}
}

// Fetch returns the response body. Every failure (transport, status, read)
// is reported as an error wrapping ErrUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	body, err := f.fetch(ctx)
	if err != nil {
		metrics.LicenseFetchFailureTotal.Inc()
		if f.Logger != nil {
			f.Logger.Printf("WARN: license: fetch %s: %v", f.URL, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.LicenseFetchSuccessTotal.Inc()
	metrics.LicenseLastFetchUnix.Set(float64(time.Now().Unix()))
	return body, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
