package middleware

import (
	"context"
	"io"
	"log"
	"net/http"

	"license-gate/internal/license"
)

// Checker decides whether a host is licensed.
type Checker interface {
	Check(ctx context.Context, host string) license.Decision
}

// DenyFunc writes the terminal response for a denied request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, d license.Decision)

// LicenseGate validates r.Host on every request. Licensed requests reach next;
// denied requests get deny's response and nothing else runs.
func LicenseGate(gate Checker, deny DenyFunc, logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deny == nil {
		deny = func(w http.ResponseWriter, r *http.Request, d license.Decision) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := gate.Check(r.Context(), r.Host)
			if d.Allowed {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), decisionKey, d)))
				return
			}
			logger.Printf("license: blocked host=%s registrable=%s source=%s rid=%s", d.CurrentDomain, d.RegistrableDomain, d.Source, RequestID(r))
			deny(w, r, d)
		})
	}
}

type decisionCtxKey struct{}

var decisionKey decisionCtxKey

// Decision returns the license decision LicenseGate made for r, if any.
func Decision(r *http.Request) (license.Decision, bool) {
	d, ok := r.Context().Value(decisionKey).(license.Decision)
	return d, ok
}
