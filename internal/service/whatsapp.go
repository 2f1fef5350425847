package service

import (
	"strings"

	"github.com/linkflow/linkflow/internal/model"
)

const (
	CountryCode    = "55"
	whatsAppPrefix = "https://wa.me/"
)

// DefaultGreeting is sent when neither the number nor the group carries a message.
const DefaultGreeting = "Olá! Gostaria de mais informações."

// DetectDevice classifies a user agent. Tablets are never inferred.
func DetectDevice(userAgent string) model.DeviceType {
	if strings.Contains(strings.ToLower(userAgent), "mobile") {
		return model.Mobile
	}
	return model.Desktop
}

// NormalizePhone keeps digits only and makes sure the Brazilian country code leads.
func NormalizePhone(phone string) string {
	d := model.Digits(phone)
	if strings.HasPrefix(d, CountryCode) {
		return d
	}
	return CountryCode + d
}

// WhatsAppURL builds the wa.me deep link for an already normalised phone.
func WhatsAppURL(phone, message string) string {
	return whatsAppPrefix + phone + "?text=" + encodeURIComponent(message)
}

// IsWhatsAppURL reports whether target points at wa.me over https.
func IsWhatsAppURL(target string) bool {
	return strings.HasPrefix(target, whatsAppPrefix)
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent escapes s byte-wise over its UTF-8 encoding, leaving
// A-Z a-z 0-9 and -_.!~*'() untouched.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
