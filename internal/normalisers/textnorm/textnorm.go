// Package textnorm holds the text clean-up shared by every normaliser.
//
// Extracted text is reduced to word characters, whitespace and the
// punctuation . , ! ? - so that PDF and web sources produce the same shape
// of text before chunking.
package textnorm

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s.,!?-]`)
	whitespace = regexp.MustCompile(`\s+`)
	percentRun = regexp.MustCompile(`(?:%[0-9A-Fa-f]{2})+`)
)

// Normalise strips disallowed characters, collapses whitespace runs to a
// single space and trims the result.
func Normalise(s string) string {
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PercentDecode decodes every well-formed %XX escape sequence.
// A stray '%' that does not start a valid escape is kept as is.
func PercentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return percentRun.ReplaceAllStringFunc(s, func(run string) string {
		decoded, err := url.PathUnescape(run)
		if err != nil {
			return run
		}
		return decoded
	})
}

// Truncate returns at most limit runes of s and whether anything was cut.
// The chunker uses it to cap single-chunk documents.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 {
		return "", s != ""
	}
	if len(s) <= limit {
		// Byte length bounds rune count.
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}
