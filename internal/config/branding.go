package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Branding holds the static texts of the license error page.
type Branding struct {
	Lang         string `yaml:"lang"`
	Title        string `yaml:"title"`
	Heading      string `yaml:"heading"`
	Message      string `yaml:"message"`
	Details      string `yaml:"details"`
	ContactTitle string `yaml:"contact_title"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	WhatsAppURL  string `yaml:"whatsapp_url"`
	EmailLabel   string `yaml:"email_label"`
	PhoneLabel   string `yaml:"phone_label"`
	EmailButton  string `yaml:"email_button"`
	ChatButton   string `yaml:"chat_button"`
}

func DefaultBranding() Branding {
	return Branding{
		Lang:         "tr",
		Title:        "Lisans Hatası - Dev Efkwn",
		Heading:      "🚫 Lisans Hatası",
		Message:      "Bu domain için lisans bulunamadı.",
		Details:      "Web sitesi lisanslı domainler dışında kullanılamaz. Lisans satın almak veya mevcut lisansınızı güncellemek için bizimle iletişime geçin.",
		ContactTitle: "📞 İletişim Bilgileri",
		Email:        "tefkan3@yahoo.com",
		Phone:        "+90 (555) 123 45 67",
		WhatsAppURL:  "https://wa.me/905551234567",
		EmailLabel:   "Email",
		PhoneLabel:   "Telefon",
		EmailButton:  "E-posta Gönder",
		ChatButton:   "WhatsApp",
	}
}

// LoadBranding reads a YAML file on top of the defaults; keys absent from the
// file keep their default value.
func LoadBranding(path string) (Branding, error) {
	b := DefaultBranding()
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return DefaultBranding(), fmt.Errorf("parse branding: %w", err)
	}
	return b, nil
}
