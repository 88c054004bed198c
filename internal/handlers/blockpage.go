package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"license-gate/internal/config"
	"license-gate/internal/license"
	"license-gate/web"
)

// BlockPage renders the terminal 403 response for unlicensed hosts.
type BlockPage struct {
	tmpl     *template.Template
	branding config.Branding
	logger   *log.Logger
}

func NewBlockPage(branding config.Branding, logger *log.Logger) (*BlockPage, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	raw, err := web.Content.ReadFile("templates/license_error.html")
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tmpl, err := template.New("license_error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &BlockPage{tmpl: tmpl, branding: branding, logger: logger}, nil
}

// Render writes status 403 and the error document for d.
func (p *BlockPage) Render(w http.ResponseWriter, r *http.Request, d license.Decision) {
	data := struct {
		Domain   string
		Branding config.Branding
	}{Domain: d.CurrentDomain, Branding: p.branding}

	var buf bytes.Buffer
	w.Header().Set("Cache-Control", "no-store")
	if err := p.tmpl.Execute(&buf, data); err != nil {
		p.logger.Printf("ERROR: block page: template execute: %v", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "license not found for this domain\n")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write(buf.Bytes())
}
