// Package fuzz is an entry point for go-fuzz over the knowledge base parser.
package fuzz

import (
	"fmt"

	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/parser"
)

// Fuzz parses data as clauses. Parsed clauses must print back to text that parses
// to the same knowledge base.
func Fuzz(data []byte) int {
	clauses, err := parser.ParseClauses(string(data))
	if err != nil {
		return 0
	}
	k := kb.FromClauses(clauses)
	again, err := parser.ParseClauses(k.String())
	if err != nil {
		panic(fmt.Sprintf("reparsing %q: %v", k.String(), err))
	}
	if got := kb.FromClauses(again).String(); got != k.String() {
		panic(fmt.Sprintf("round trip: got %q, want %q", got, k.String()))
	}
	return 1
}
