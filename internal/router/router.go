package router

import (
	"log"
	"net/http"

	"license-gate/internal/handlers"
	"license-gate/internal/license"
	"license-gate/internal/metrics"
	"license-gate/internal/middleware"
)

// New wires the gate in front of app. Probes and metrics stay reachable from
// any host; everything else, including the status endpoint, is license checked.
func New(logger *log.Logger, gate *license.Gatekeeper, page *handlers.BlockPage, app http.Handler, version string) http.Handler {
	api := &handlers.API{Gate: gate, Logger: logger, Version: version}
	secure := middleware.SecurityHeaders()

	deny := func(w http.ResponseWriter, r *http.Request, d license.Decision) {
		secure(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page.Render(w, r, d)
		})).ServeHTTP(w, r)
	}
	gated := middleware.LicenseGate(gate, deny, logger)

	mux := http.NewServeMux()
	mux.Handle("/healthz", secure(http.HandlerFunc(api.Health)))
	mux.Handle("/livez", secure(http.HandlerFunc(api.Live)))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/license/status", middleware.Chain(http.HandlerFunc(api.LicenseStatus), gated, secure))
	mux.Handle("/", gated(app))

	return middleware.Chain(mux,
		middleware.RequestIDMiddleware(),
		middleware.Recover(logger),
		middleware.Logging(logger),
		middleware.VersionHeader(version),
	)
}
