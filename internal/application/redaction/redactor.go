// Package redaction masks personal data in document text before it leaves the
// process.
package redaction

import (
	"regexp"
	"unicode"
)

const (
	EmailPlaceholder = "[EMAIL_REDACTED]"
	PhonePlaceholder = "[PHONE_REDACTED]"

	// minPhoneDigits is the smallest digit count treated as a phone number.
	minPhoneDigits = 10
)

var (
	// unicode classes, umlauts in local part and IDN domains are common
	emailPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_.+\-]+@[\p{L}\p{M}\p{N}\-]+(?:\.[\p{L}\p{M}\p{N}\-]+)*\.[\p{L}\p{M}]{2,}`)

	// candidate only; the digit count is checked in redactPhone
	phonePattern = regexp.MustCompile(`\+?[\d(][\d \-()]*\d\b`)
)

// Redactor masks email addresses and phone numbers. The zero value is ready
// to use and safe for concurrent use.
type Redactor struct{}

// New returns a Redactor.
func New() *Redactor { return &Redactor{} }

// Redact returns text with every email and phone number replaced by a
// placeholder token.
func (*Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	text = emailPattern.ReplaceAllLiteralString(text, EmailPlaceholder)
	return phonePattern.ReplaceAllStringFunc(text, redactPhone)
}

func redactPhone(match string) string {
	digits := 0
	for _, r := range match {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return match
	}
	return PhonePlaceholder
}
