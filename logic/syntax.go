package logic

import (
	"strings"

	"github.com/brunokim/backchain/runes"
)

func isIdents(text string) bool {
	for _, ch := range text {
		if !runes.IsIdent(ch) {
			return false
		}
	}
	return true
}

// IsVar returns whether text is a valid var name.
func IsVar(text string) bool {
	ch, ok := runes.First(text)
	if !ok || !runes.IsVarFirst(ch) {
		return false
	}
	return isIdents(text)
}

// IsNumber returns whether text is a sequence of decimal digits.
func IsNumber(text string) bool {
	if text == "" {
		return false
	}
	for _, ch := range text {
		if !runes.IsDigit(ch) {
			return false
		}
	}
	return true
}

// IsPlainConst returns whether text can be written as a constant without quotes.
func IsPlainConst(text string) bool {
	if IsNumber(text) {
		return true
	}
	ch, ok := runes.First(text)
	if !ok || !runes.IsConstFirst(ch) {
		return false
	}
	return isIdents(text)
}

var escapeChars = map[rune]string{
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	'\'': `\'`,
	'\\': `\\`,
}

// FormatConst returns the textual representation of a constant, quoting it if necessary.
func FormatConst(text string) string {
	if IsPlainConst(text) {
		return text
	}
	var b strings.Builder
	b.WriteRune('\'')
	for _, ch := range text {
		if exp, ok := escapeChars[ch]; ok {
			b.WriteString(exp)
		} else {
			b.WriteRune(ch)
		}
	}
	b.WriteRune('\'')
	return b.String()
}
