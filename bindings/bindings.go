// Package bindings implements a persistent substitution environment.
//
// A List maps variables to terms, preserving insertion order. Lists are never
// mutated: Bind returns a new list that shares structure with the receiver, so
// every previously returned list remains valid. The empty list is the nil *List.
package bindings

import (
	"fmt"
	"strings"

	"github.com/brunokim/backchain/logic"
)

// Empty is the list without bindings.
var Empty *List

// List is an immutable, insertion-ordered association list from vars to terms.
type List struct {
	prev *List
	x    logic.Var
	val  logic.Term
	size int
}

// Binding is a single pair of a List.
type Binding struct {
	Var  logic.Var
	Term logic.Term
}

func (b Binding) String() string {
	return fmt.Sprintf("%v = %v", b.Var, b.Term)
}

// Len returns the number of bound vars.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.size
}

// Lookup returns the term bound to x, if any.
func (l *List) Lookup(x logic.Var) (logic.Term, bool) {
	for node := l; node != nil; node = node.prev {
		if node.x == x {
			return node.val, true
		}
	}
	return nil, false
}

// IsBound returns whether x has a binding.
func (l *List) IsBound(x logic.Var) bool {
	_, ok := l.Lookup(x)
	return ok
}

// Bind returns a new list with an additional binding from x to t.
//
// It panics if x is already bound.
func (l *List) Bind(x logic.Var, t logic.Term) *List {
	if t == nil {
		panic(fmt.Sprintf("Bind(%v, nil): nil term", x))
	}
	if old, ok := l.Lookup(x); ok {
		panic(fmt.Sprintf("Bind(%v, %v): already bound to %v", x, t, old))
	}
	return &List{prev: l, x: x, val: t, size: l.Len() + 1}
}

// Bindings returns all pairs in insertion order.
func (l *List) Bindings() []Binding {
	bs := make([]Binding, l.Len())
	for node := l; node != nil; node = node.prev {
		bs[node.size-1] = Binding{node.x, node.val}
	}
	return bs
}

// Vars returns all bound vars in insertion order.
func (l *List) Vars() []logic.Var {
	xs := make([]logic.Var, l.Len())
	for node := l; node != nil; node = node.prev {
		xs[node.size-1] = node.x
	}
	return xs
}

// Resolve substitutes bound vars within term, transitively.
//
// Binding chains that loop back into a var already being resolved are left
// unexpanded at the var.
func (l *List) Resolve(term logic.Term) logic.Term {
	return l.resolve(term, make(map[logic.Var]struct{}))
}

func (l *List) resolve(term logic.Term, visiting map[logic.Var]struct{}) logic.Term {
	switch t := term.(type) {
	case logic.Const:
		return t
	case logic.Var:
		val, ok := l.Lookup(t)
		if !ok {
			return t
		}
		if _, ok := visiting[t]; ok {
			return t
		}
		visiting[t] = struct{}{}
		defer delete(visiting, t)
		return l.resolve(val, visiting)
	case *logic.Comp:
		if logic.IsGround(t) {
			return t
		}
		args := make([]logic.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = l.resolve(arg, visiting)
		}
		return logic.NewComp(t.Functor, args...)
	default:
		panic(fmt.Sprintf("bindings.Resolve: unhandled type %T", term))
	}
}

// ResolveLiteral substitutes bound vars within every argument of lit.
func (l *List) ResolveLiteral(lit logic.Literal) logic.Literal {
	args := make([]logic.Term, len(lit.Args))
	for i, arg := range lit.Args {
		args[i] = l.Resolve(arg)
	}
	return logic.NewLiteral(lit.Pred, args...)
}

// Restrict returns the resolved bindings of xs, in the given order. Unbound vars
// are skipped.
func (l *List) Restrict(xs []logic.Var) []Binding {
	var bs []Binding
	for _, x := range xs {
		if !l.IsBound(x) {
			continue
		}
		bs = append(bs, Binding{x, l.Resolve(x)})
	}
	return bs
}

func (l *List) String() string {
	if l.Len() == 0 {
		return "{}"
	}
	return Format(l.Bindings())
}

// Format joins bindings as "X = a, Y = b".
func Format(bs []Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}
