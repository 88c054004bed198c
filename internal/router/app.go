package router

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewApp returns the protected application: a reverse proxy to upstream when
// set, otherwise a file server rooted at siteRoot.
func NewApp(logger *log.Logger, upstream, siteRoot string) (http.Handler, error) {
	if upstream == "" {
		return http.FileServer(http.Dir(siteRoot)), nil
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme and host required", upstream)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Printf("ERROR: upstream %s: %v", target.Host, err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
	}
	return proxy, nil
}
