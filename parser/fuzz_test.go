package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/brunokim/backchain/parser"
)

func FuzzParseClauses(f *testing.F) {
	seeds := []string{
		"parent(tom, bob).",
		"gp(X, Z) :- parent(X, Y), parent(Y, Z).",
		"p('New York', 'it\\'s', 42, f(g(), _)).\n% comment\nq :- p(a).",
		"p(a",
		"'",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, text string) {
		clauses, err := parser.ParseClauses(text)
		if err != nil {
			var syntaxErr *parser.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("%q: got non-syntax error %v", text, err)
			}
			return
		}
		var b strings.Builder
		for _, c := range clauses {
			b.WriteString(c.String())
			b.WriteByte('\n')
		}
		again, err := parser.ParseClauses(b.String())
		if err != nil {
			t.Fatalf("reparsing %q: got err: %v", b.String(), err)
		}
		if len(again) != len(clauses) {
			t.Fatalf("reparsing %q: got %d clauses, want %d", b.String(), len(again), len(clauses))
		}
		for i := range clauses {
			if !again[i].Eq(clauses[i]) {
				t.Errorf("clause #%d: got %v, want %v", i, again[i], clauses[i])
			}
		}
	})
}
