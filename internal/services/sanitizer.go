package services

import (
	"regexp"
	"strings"
)

// MaxCVTextLen is the storage column capacity for extracted CV text,
// measured in Unicode code points.
const MaxCVTextLen = 65535

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeText normalizes raw extracted text into a storage-safe string. It
// strips control characters, replaces invalid UTF-8 sequences, collapses
// whitespace runs to a single space, trims, and caps the result at
// MaxCVTextLen code points. Total and idempotent for any input, including
// binary garbage.
func SanitizeText(raw string) string {
	text := strings.ToValidUTF8(raw, "")

	text = strings.Map(func(r rune) rune {
		switch {
		case r <= 0x08,
			r == 0x0B, r == 0x0C,
			r >= 0x0E && r <= 0x1F,
			r == 0x7F,
			r >= 0x80 && r <= 0x9F:
			return -1
		}
		return r
	}, text)

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if runes := []rune(text); len(runes) > MaxCVTextLen {
		text = strings.TrimSpace(string(runes[:MaxCVTextLen]))
	}

	return text
}
