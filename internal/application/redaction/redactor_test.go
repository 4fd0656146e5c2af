package redaction

import (
	"regexp"
	"strings"
	"testing"
)

var rawEmail = regexp.MustCompile(`[\p{L}\p{N}_.+\-]+@[\p{L}\p{N}\-]+\.[\p{L}\p{N}.\-]+`)

func TestRedact_Emails(t *testing.T) {
	t.Parallel()

	r := New()
	tests := []struct {
		name  string
		input string
		count int
	}{
		{name: "single", input: "write to john@x.com please", count: 1},
		{name: "subdomain", input: "a.b+tag@mail.example.co.uk", count: 1},
		{name: "two addresses", input: "cc: anna@firma.de, bob@kanzlei.at.", count: 2},
		{name: "none", input: "no address here @ all", count: 0},
		{name: "umlaut local part", input: "Kontakt: müller@firma.de", count: 1},
		{name: "umlaut domain", input: "Info: anna@bäckerei-schmidt.de", count: 1},
		{name: "umlaut tld neighbour", input: "an jürgen.müller@gmx.de, danke", count: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := r.Redact(tt.input)
			if rawEmail.MatchString(out) {
				t.Fatalf("email survived redaction: %q", out)
			}
			if got := strings.Count(out, EmailPlaceholder); got != tt.count {
				t.Fatalf("expected %d placeholders, got %d in %q", tt.count, got, out)
			}
		})
	}
}

func TestRedact_UnicodeEmailsFullyMasked(t *testing.T) {
	t.Parallel()

	r := New()
	tests := map[string]string{
		"Schreiben Sie an jürgen.müller@gmx.de bitte": "Schreiben Sie an [EMAIL_REDACTED] bitte",
		"Kontakt: müller@firma.de":                    "Kontakt: [EMAIL_REDACTED]",
		"Info: anna@bäckerei-schmidt.de":              "Info: [EMAIL_REDACTED]",
		"Mail an søren@københavn.dk.":                 "Mail an [EMAIL_REDACTED].",
		"(zoë@example.org)":                           "([EMAIL_REDACTED])",
	}
	for in, want := range tests {
		if got := r.Redact(in); got != want {
			t.Fatalf("Redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedact_Phones(t *testing.T) {
	t.Parallel()

	r := New()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "international", input: "call +1 555-123-4567.", want: "call [PHONE_REDACTED]."},
		{name: "parentheses", input: "tel (030) 1234-5678", want: "tel [PHONE_REDACTED]"},
		{name: "plain ten digits", input: "1234567890", want: "[PHONE_REDACTED]"},
		{name: "nine digits untouched", input: "ref 123456789 ok", want: "ref 123456789 ok"},
		{name: "short run untouched", input: "room 555-1234", want: "room 555-1234"},
		{name: "year untouched", input: "signed in 2023", want: "signed in 2023"},
		{name: "single date untouched", input: "am 2024-05-01 verkündet", want: "am 2024-05-01 verkündet"},
		// the candidate is greedy: a trailing short number is part of the match
		{name: "greedy trailing number", input: "phone 555-123-4567 2 times", want: "phone [PHONE_REDACTED] times"},
		{name: "adjacent dates", input: "2024-05-01 2024-06-01", want: "[PHONE_REDACTED]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := r.Redact(tt.input); got != tt.want {
				t.Fatalf("Redact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedact_Mixed(t *testing.T) {
	t.Parallel()

	in := "Contact john@x.com or +1 555-123-4567."
	want := "Contact [EMAIL_REDACTED] or [PHONE_REDACTED]."
	if got := New().Redact(in); got != want {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRedact_Empty(t *testing.T) {
	t.Parallel()

	var r Redactor
	if got := r.Redact(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
