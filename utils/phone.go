package utils

import "strings"

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// DigitsOnly removes every non-digit character.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// IsPhoneNumber accepts input with 7 to 15 digits once punctuation and
// spaces are stripped.
func IsPhoneNumber(s string) bool {
	n := len(DigitsOnly(s))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// NormalizeWhatsAppNumber cleans a phone number for the WhatsApp API, adding
// the US country code to bare 10-digit numbers.
func NormalizeWhatsAppNumber(phone string) string {
	cleaned := DigitsOnly(phone)
	if len(cleaned) == 10 {
		cleaned = "1" + cleaned
	}
	return cleaned
}
