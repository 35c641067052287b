// Package parser reads knowledge bases and queries written in a Prolog-like syntax.
//
//	% comment until end of line
//	parent(tom, bob).
//	parent(bob, 'Ann Smith').
//	grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
//
// Names starting with a lowercase letter, digit sequences and single-quoted text are
// constants; names starting with an uppercase letter or underscore are vars. Argument
// lists may end with a trailing comma. Every occurrence of a var name within a clause,
// including "_", refers to the same var.
package parser

import (
	stderrors "errors"
	"fmt"

	"github.com/brunokim/backchain/errors"
	"github.com/brunokim/backchain/logic"
)

// ErrUnexpectedEOF is wrapped by syntax errors caused by input that ended too early.
// More text may complete the input.
var ErrUnexpectedEOF = stderrors.New("unexpected end of input")

// SyntaxError reports the position of malformed input. Line and Col are 1-based;
// Col counts runes.
type SyntaxError struct {
	Line, Col int
	Err       error
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %v", err.Line, err.Col, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

type parser struct {
	lex *lexer
	tok token
}

func newParser(text string) (*parser, error) {
	p := &parser{lex: newLexer(text)}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected(want string) error {
	if p.tok.kind == eofTok {
		return &SyntaxError{p.tok.line, p.tok.col, errors.New("expected %s: %v", want, ErrUnexpectedEOF)}
	}
	return &SyntaxError{p.tok.line, p.tok.col, errors.New("expected %s, got %v", want, p.tok)}
}

func (p *parser) expect(kind tokenKind, want string) error {
	if p.tok.kind != kind {
		return p.unexpected(want)
	}
	return p.advance()
}

// ---- Grammar

func (p *parser) term() (logic.Term, error) {
	tok := p.tok
	switch tok.kind {
	case varTok:
		return logic.NewVar(tok.text), p.advance()
	case constTok:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != openTok {
			return logic.Const{Name: tok.text}, nil
		}
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return logic.NewComp(tok.text, args...), nil
	default:
		return nil, p.unexpected("term")
	}
}

// args parses a parenthesized, comma-separated term list, starting at '('.
func (p *parser) args() ([]logic.Term, error) {
	if err := p.expect(openTok, "'('"); err != nil {
		return nil, err
	}
	var args []logic.Term
	for p.tok.kind != closeTok {
		arg, err := p.term()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.kind == commaTok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.kind != closeTok {
			return nil, p.unexpected("',' or ')'")
		}
	}
	return args, p.advance()
}

func (p *parser) literal() (logic.Literal, error) {
	tok := p.tok
	if tok.kind != constTok {
		return logic.Literal{}, p.unexpected("predicate")
	}
	if err := p.advance(); err != nil {
		return logic.Literal{}, err
	}
	if p.tok.kind != openTok {
		return logic.NewLiteral(tok.text), nil
	}
	args, err := p.args()
	if err != nil {
		return logic.Literal{}, err
	}
	return logic.NewLiteral(tok.text, args...), nil
}

func (p *parser) literals() ([]logic.Literal, error) {
	var lits []logic.Literal
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		lits = append(lits, lit)
		if p.tok.kind != commaTok {
			return lits, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) clause() (*logic.Rule, error) {
	head, err := p.literal()
	if err != nil {
		return nil, err
	}
	var body []logic.Literal
	if p.tok.kind == ifTok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if body, err = p.literals(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(periodTok, "'.'"); err != nil {
		return nil, err
	}
	return logic.NewRule(head, body...), nil
}

func (p *parser) end() error {
	if p.tok.kind != eofTok {
		return p.unexpected("end of input")
	}
	return nil
}

// ---- API

// ParseTerm parses a single term.
func ParseTerm(text string) (logic.Term, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	term, err := p.term()
	if err != nil {
		return nil, err
	}
	return term, p.end()
}

// ParseLiteral parses a single literal, without a final period.
func ParseLiteral(text string) (logic.Literal, error) {
	p, err := newParser(text)
	if err != nil {
		return logic.Literal{}, err
	}
	lit, err := p.literal()
	if err != nil {
		return logic.Literal{}, err
	}
	return lit, p.end()
}

// ParseQuery parses a comma-separated conjunction of literals, optionally ending
// with a period.
func ParseQuery(text string) ([]logic.Literal, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	lits, err := p.literals()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == periodTok {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return lits, p.end()
}

// ParseClauses parses a sequence of clauses, each ending with a period. Facts are
// returned as bodiless rules; see kb.FromClauses.
func ParseClauses(text string) ([]*logic.Rule, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	var clauses []*logic.Rule
	for p.tok.kind != eofTok {
		c, err := p.clause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}
