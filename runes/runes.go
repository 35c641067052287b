// Package runes contains the character classes shared by the term printer and the parser.
package runes

import (
	"unicode"
	"unicode/utf8"
)

// First returns the first rune of s. If the string is empty or not proper UTF-8, returns false.
func First(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size < 2 {
		return 0, false
	}
	return r, true
}

// IsIdent returns whether ch may appear after the first char of a name.
func IsIdent(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// IsVarFirst returns whether ch starts a var name.
func IsVarFirst(ch rune) bool {
	return ch == '_' || unicode.IsUpper(ch)
}

// IsConstFirst returns whether ch starts an unquoted constant that is not a number.
func IsConstFirst(ch rune) bool {
	return unicode.IsLower(ch)
}

// IsSpace returns whether ch is whitespace.
func IsSpace(ch rune) bool {
	return unicode.IsSpace(ch)
}

// IsDigit returns whether ch is a decimal digit.
func IsDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}
