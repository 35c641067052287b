package solver

import (
	"fmt"
	"strings"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/logic"
)

// Proof records how a goal was proved: by a fact, or by a renamed rule whose body
// goals are proved by Children.
type Proof struct {
	Goal logic.Literal
	Fact logic.Literal
	// Rule is nil when the goal was proved by Fact.
	Rule     *logic.Rule
	Children []*Proof
}

// Format prints the proof as an indented tree, with goals resolved under bl.
func (p *Proof) Format(bl *bindings.List) string {
	var b strings.Builder
	p.format(&b, bl, 0)
	return b.String()
}

func (p *Proof) format(b *strings.Builder, bl *bindings.List, indent int) {
	pad := strings.Repeat("  ", indent)
	goal := bl.ResolveLiteral(p.Goal)
	if p.Rule == nil {
		fmt.Fprintf(b, "%s%v  <- fact\n", pad, goal)
		return
	}
	fmt.Fprintf(b, "%s%v  <- %v\n", pad, goal, p.Rule)
	for _, child := range p.Children {
		child.format(b, bl, indent+1)
	}
}

// Explain formats the proof of every goal in the solution.
func (sol Solution) Explain() string {
	var b strings.Builder
	for _, p := range sol.Proofs {
		b.WriteString(p.Format(sol.Bindings))
	}
	return b.String()
}
