// Package kb holds the knowledge base consulted by the solver: ground facts and
// definite-clause rules, each kept in the order they were given.
//
// A KB is read-only after construction and may be shared between goroutines.
package kb

import (
	"fmt"
	"strings"

	"github.com/brunokim/backchain/logic"
)

// KB is an ordered collection of facts and rules.
type KB struct {
	facts []logic.Literal
	rules []*logic.Rule
}

// NonGroundFactError is returned when a fact contains variables.
type NonGroundFactError struct {
	Index int
	Fact  logic.Literal
}

func (err *NonGroundFactError) Error() string {
	return fmt.Sprintf("fact #%d %v is not ground: contains %v", err.Index, err.Fact, err.Fact.Vars())
}

// New builds a KB from facts and rules. The slices are copied.
func New(facts []logic.Literal, rules []*logic.Rule) (*KB, error) {
	for i, fact := range facts {
		if !fact.IsGround() {
			return nil, &NonGroundFactError{Index: i, Fact: fact}
		}
	}
	k := &KB{
		facts: make([]logic.Literal, len(facts)),
		rules: make([]*logic.Rule, len(rules)),
	}
	copy(k.facts, facts)
	copy(k.rules, rules)
	return k, nil
}

// FromClauses splits clauses into facts and rules. A clause is a fact if it has no
// body and its head is ground; every other clause is a rule.
func FromClauses(clauses []*logic.Rule) *KB {
	k := new(KB)
	for _, c := range clauses {
		if IsFact(c) {
			k.facts = append(k.facts, c.Head)
		} else {
			k.rules = append(k.rules, c)
		}
	}
	return k
}

// IsFact returns whether the clause is stored as a fact.
func IsFact(c *logic.Rule) bool {
	return len(c.Body) == 0 && c.Head.IsGround()
}

// Merge returns a KB with the facts and rules of every input, in order.
func Merge(kbs ...*KB) *KB {
	k := new(KB)
	for _, other := range kbs {
		if other == nil {
			continue
		}
		k.facts = append(k.facts, other.facts...)
		k.rules = append(k.rules, other.rules...)
	}
	return k
}

// Facts returns the facts in order. The returned slice must not be modified.
func (k *KB) Facts() []logic.Literal {
	if k == nil {
		return nil
	}
	return k.facts
}

// Rules returns the rules in order. The returned slice must not be modified.
func (k *KB) Rules() []*logic.Rule {
	if k == nil {
		return nil
	}
	return k.rules
}

// Clauses returns facts, as bodiless rules, followed by rules.
func (k *KB) Clauses() []*logic.Rule {
	clauses := make([]*logic.Rule, 0, len(k.Facts())+len(k.Rules()))
	for _, fact := range k.Facts() {
		clauses = append(clauses, logic.NewRule(fact))
	}
	return append(clauses, k.Rules()...)
}

// Predicates returns the indicators of every fact and rule head, in first appearance order.
func (k *KB) Predicates() []logic.Indicator {
	seen := make(map[logic.Indicator]struct{})
	var inds []logic.Indicator
	add := func(ind logic.Indicator) {
		if _, ok := seen[ind]; ok {
			return
		}
		seen[ind] = struct{}{}
		inds = append(inds, ind)
	}
	for _, fact := range k.Facts() {
		add(fact.Indicator())
	}
	for _, r := range k.Rules() {
		add(r.Head.Indicator())
	}
	return inds
}

func (k *KB) String() string {
	var b strings.Builder
	for _, c := range k.Clauses() {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
