package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"license-gate/internal/metrics"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
)

func RequestID(r *http.Request) string {
	if v := r.Context().Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RequestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf [8]byte
			_, _ = rand.Read(buf[:])
			id := hex.EncodeToString(buf[:])
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type statusWriter struct {
	http.ResponseWriter
	start  time.Time
	status int
	size   int
}

// WriteHeader stamps the time to first byte while headers can still be sent.
func (w *statusWriter) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
	w.Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(w.start).Milliseconds(), 10))
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, start: start}
			next.ServeHTTP(sw, r)
			if sw.status == 0 {
				sw.WriteHeader(http.StatusOK)
			}
			dur := time.Since(start)
			// the protected site has unbounded paths; label by route class only
			metrics.ObserveRequest(r.Method, routeClass(r.URL.Path), http.StatusText(sw.status), dur, sw.status)
			ua := r.Header.Get("User-Agent")
			ip := clientIP(r)
			reqID := RequestID(r)
			if reqID != "" {
				logger.Printf("%s %s %s %d %dB %s ip=%s rid=%s ua=%q", r.Method, r.Host, r.URL.Path, sw.status, sw.size, dur, ip, reqID, ua)
			} else {
				logger.Printf("%s %s %s %d %dB %s ip=%s ua=%q", r.Method, r.Host, r.URL.Path, sw.status, sw.size, dur, ip, ua)
			}
		})
	}
}

func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Printf("ERROR: panic: %v\n%s", rec, debug.Stack())
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
			w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
			w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'none'")
			next.ServeHTTP(w, r)
		})
	}
}

func VersionHeader(ver string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ver != "" {
				w.Header().Set("X-Service-Version", ver)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Whether it should honor X-Forwarded-For / X-Real-IP headers.
// Set once during startup via SetTrustProxyHeaders and read concurrently.
var trustProxy atomic.Bool

// Configures whether clientIP should trust proxy-provided headers.
func SetTrustProxyHeaders(v bool) { trustProxy.Store(v) }

func clientIP(r *http.Request) string {
	if trustProxy.Load() {
		for _, h := range []string{"X-Forwarded-For", "X-Real-IP"} {
			if v := r.Header.Get(h); v != "" {
				parts := strings.Split(v, ",")
				return strings.TrimSpace(parts[0])
			}
		}
	}
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i != -1 {
		return ip[:i]
	}
	return ip
}

func routeClass(p string) string {
	switch {
	case p == "/healthz", p == "/livez", p == "/metrics", p == "/license/status":
		return p
	default:
		return "/*"
	}
}
