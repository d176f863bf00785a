package brcode

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics from s: it decomposes the text (NFD) and drops
// combining marks and anything left outside ASCII, so "São João" becomes
// "Sao Joao".
func Normalize(s string) string {
	// transform.Chain keeps state, build one per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return asciiOnly(s)
	}
	return out
}

func asciiOnly(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] <= unicode.MaxASCII {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// truncate cuts an ASCII string to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
