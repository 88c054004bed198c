package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"license-gate/internal/config"
	"license-gate/internal/license"
)

func TestBlockPageRender(t *testing.T) {
	b := config.DefaultBranding()
	b.Email = "sales@example.com"
	page, err := NewBlockPage(b, nil)
	if err != nil {
		t.Fatalf("new block page: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	page.Render(rec, req, license.Decision{CurrentDomain: `evil.com"><script>x</script>`, Reason: license.ReasonNotLicensed})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Fatalf("domain must be escaped: %s", body)
	}
	for _, want := range []string{"sales@example.com", "mailto:sales@example.com", b.Phone, b.WhatsAppURL, "evil.com&#34;&gt;"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestBlockPageOmitsEmptyContacts(t *testing.T) {
	b := config.DefaultBranding()
	b.WhatsAppURL = ""
	page, err := NewBlockPage(b, nil)
	if err != nil {
		t.Fatalf("new block page: %v", err)
	}
	rec := httptest.NewRecorder()
	page.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), license.Decision{CurrentDomain: "a.com"})
	if strings.Contains(rec.Body.String(), "wa.me") {
		t.Fatalf("empty whatsapp url must not render a link")
	}
}
