package store

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeCategory canonicalizes a category string: trim, collapse internal
// whitespace, lowercase, then capitalize the first letter of each token.
// The result is stable under repeated application.
func NormalizeCategory(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = titleToken(strings.ToLower(f))
	}
	return strings.Join(fields, " ")
}

func titleToken(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
