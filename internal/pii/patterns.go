package pii

import (
	"regexp"
	"strings"
)

// Category labels a class of detected personal data.
type Category string

const (
	CategoryName  Category = "name"
	CategoryPhone Category = "phone"
	CategoryEmail Category = "email"
	CategoryIBAN  Category = "iban"
	CategoryFIN   Category = "fin"
	CategoryGPS   Category = "gps"
)

// Placeholder returns the typed token substituted for a detected span.
func (c Category) Placeholder() string {
	return "[" + strings.ToUpper(string(c)) + "]"
}

// Detection pattern set. Regex-based and best-effort: it catches the common
// Azerbaijani formats (international +994 phones, AZ IBANs, FIN codes) but is
// not a certified de-identification guarantee.
var (
	// +994 XX XXX XX XX with optional separators, or local 0XX form.
	phonePattern = regexp.MustCompile(`(\+994|0)[\s-]?\d{2}[\s-]?\d{3}[\s-]?\d{2}[\s-]?\d{2}`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	ibanPattern = regexp.MustCompile(`\bAZ\d{2}[A-Z]{4}[A-Z0-9]{20}\b`)

	// FIN codes are 7 alphanumerics; matches are post-filtered to require a
	// mix of letters and digits so plain words and numbers pass through.
	finPattern = regexp.MustCompile(`\b[0-9A-Z]{7}\b`)

	gpsPattern = regexp.MustCompile(`\b\d{1,2}\.\d{3,}\s*,\s*\d{1,3}\.\d{3,}\b`)

	// Name after a self-introduction cue in Azerbaijani, Russian or English.
	nameCuePattern = regexp.MustCompile(`(?i)(mənim adım|adım|my name is|меня зовут)\s+([\p{Lu}][\p{L}]+(?:\s+[\p{Lu}][\p{L}]+)?)`)
)

func isFINCandidate(s string) bool {
	hasLetter, hasDigit := false, false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
