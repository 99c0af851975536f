// Package strcase converts Go identifiers into the snake_case keys used in
// validation error responses.
package strcase

import (
	"strings"
	"unicode"
)

// Words splits an identifier into words. '_', '-' and spaces separate words
// and are dropped. An upper-case run stays one word until the letter that
// starts a lower-case word, so "OTPCode" gives "OTP" and "Code".
func Words(s string) []string {
	runes := []rune(s)

	var (
		words []string
		cur   []rune
	)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = cur[:0]
			}
			continue
		}
		if len(cur) > 0 && startsWord(runes, i) {
			words = append(words, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}

	return words
}

// startsWord reports whether runes[i] opens a new word. i must be > 0.
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// ToLowerSnake joins the lower-cased Words of s with underscores.
func ToLowerSnake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}
