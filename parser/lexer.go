package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/brunokim/backchain/errors"
	"github.com/brunokim/backchain/runes"
)

type tokenKind int

const (
	eofTok tokenKind = iota
	constTok
	varTok
	openTok
	closeTok
	commaTok
	periodTok
	ifTok
)

type token struct {
	kind      tokenKind
	text      string
	line, col int
}

func (tok token) String() string {
	switch tok.kind {
	case eofTok:
		return "end of input"
	case constTok:
		return fmt.Sprintf("constant %q", tok.text)
	case varTok:
		return fmt.Sprintf("var %s", tok.text)
	case openTok:
		return "'('"
	case closeTok:
		return "')'"
	case commaTok:
		return "','"
	case periodTok:
		return "'.'"
	case ifTok:
		return "':-'"
	}
	return fmt.Sprintf("token(%d)", tok.kind)
}

var unescape = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\'': '\'',
	'\\': '\\',
}

type lexer struct {
	text      string
	pos       int
	line, col int
}

func newLexer(text string) *lexer {
	return &lexer{text: text, line: 1, col: 1}
}

func (l *lexer) peek() (rune, bool) {
	if l.pos >= len(l.text) {
		return 0, false
	}
	ch, _ := utf8.DecodeRuneInString(l.text[l.pos:])
	return ch, true
}

func (l *lexer) advance() rune {
	ch, size := utf8.DecodeRuneInString(l.text[l.pos:])
	l.pos += size
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Err: errors.New(format, args...)}
}

func (l *lexer) skipSpace() {
	for {
		ch, ok := l.peek()
		switch {
		case !ok:
			return
		case runes.IsSpace(ch):
			l.advance()
		case ch == '%':
			for ch, ok := l.peek(); ok && ch != '\n'; ch, ok = l.peek() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) readWhile(pred func(rune) bool) string {
	start := l.pos
	for ch, ok := l.peek(); ok && pred(ch); ch, ok = l.peek() {
		l.advance()
	}
	return l.text[start:l.pos]
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col
	tok := token{line: line, col: col}
	ch, ok := l.peek()
	if !ok {
		tok.kind = eofTok
		return tok, nil
	}
	switch {
	case ch == '(':
		l.advance()
		tok.kind = openTok
	case ch == ')':
		l.advance()
		tok.kind = closeTok
	case ch == ',':
		l.advance()
		tok.kind = commaTok
	case ch == '.':
		l.advance()
		tok.kind = periodTok
	case ch == ':':
		l.advance()
		if next, ok := l.peek(); !ok || next != '-' {
			return tok, l.errorf(line, col, "expected ':-'")
		}
		l.advance()
		tok.kind = ifTok
	case ch == '\'':
		text, err := l.quoted()
		if err != nil {
			return tok, err
		}
		tok.kind, tok.text = constTok, text
	case runes.IsDigit(ch):
		tok.kind, tok.text = constTok, l.readWhile(runes.IsDigit)
	case runes.IsVarFirst(ch):
		tok.kind, tok.text = varTok, l.readWhile(runes.IsIdent)
	case runes.IsConstFirst(ch):
		tok.kind, tok.text = constTok, l.readWhile(runes.IsIdent)
	default:
		return tok, l.errorf(line, col, "unexpected char %q", ch)
	}
	return tok, nil
}

func (l *lexer) quoted() (string, error) {
	line, col := l.line, l.col
	l.advance()
	var b strings.Builder
	for {
		ch, ok := l.peek()
		if !ok {
			return "", l.errorf(line, col, "unterminated quoted constant: %v", ErrUnexpectedEOF)
		}
		l.advance()
		switch ch {
		case '\'':
			return b.String(), nil
		case '\\':
			escLine, escCol := l.line, l.col-1
			next, ok := l.peek()
			if !ok {
				return "", l.errorf(line, col, "unterminated quoted constant: %v", ErrUnexpectedEOF)
			}
			l.advance()
			unesc, ok := unescape[next]
			if !ok {
				return "", l.errorf(escLine, escCol, "invalid escape sequence \\%c", next)
			}
			b.WriteRune(unesc)
		default:
			b.WriteRune(ch)
		}
	}
}
