// Package unify computes most general unifiers between terms, literals and term lists.
//
// Every function takes the current binding list and returns an extended list and
// true on success, or nil and false on failure. The input list is never modified,
// so a caller may discard a failed attempt and keep using its own list.
//
// A bound var is compared against constants and compounds by its value, following
// var-to-var bindings, and using structural equality rather than further unification.
// The occurs-check is made against terms resolved under the current bindings, so no
// binding ever makes a var part of its own value.
// When a bound var meets an unbound var, the unbound var is bound to the bound var
// itself, not to its value; two bound vars unify only if they are the same var.
package unify

import (
	"fmt"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/logic"
)

// Literals unifies two literals. Literals with different predicates never unify.
func Literals(l1, l2 logic.Literal, bl *bindings.List) (*bindings.List, bool) {
	if l1.Pred != l2.Pred {
		return nil, false
	}
	return TermLists(l1.Args, l2.Args, bl)
}

// TermLists unifies two term lists positionally, threading the bindings from
// each pair into the next.
func TermLists(ts1, ts2 []logic.Term, bl *bindings.List) (*bindings.List, bool) {
	if len(ts1) != len(ts2) {
		return nil, false
	}
	for i := range ts1 {
		var ok bool
		bl, ok = Terms(ts1[i], ts2[i], bl)
		if !ok {
			return nil, false
		}
	}
	return bl, true
}

// Terms unifies two terms.
func Terms(t1, t2 logic.Term, bl *bindings.List) (*bindings.List, bool) {
	switch u := t1.(type) {
	case logic.Const:
		switch v := t2.(type) {
		case logic.Const:
			return check(bl, u == v)
		case logic.Var:
			return unifyVar(v, u, bl)
		case *logic.Comp:
			return nil, false
		}
	case logic.Var:
		return unifyVar(u, t2, bl)
	case *logic.Comp:
		switch v := t2.(type) {
		case logic.Const:
			return nil, false
		case logic.Var:
			return unifyVar(v, u, bl)
		case *logic.Comp:
			if u.Functor != v.Functor || len(u.Args) != len(v.Args) {
				return nil, false
			}
			return TermLists(u.Args, v.Args, bl)
		}
	}
	panic(fmt.Sprintf("unify.Terms: unhandled types %T, %T", t1, t2))
}

func unifyVar(x logic.Var, t logic.Term, bl *bindings.List) (*bindings.List, bool) {
	val, ok := bl.Lookup(x)
	if !ok {
		return unifyUnbound(x, t, bl)
	}
	switch v := t.(type) {
	case logic.Var:
		// Only checks whether v itself is bound, without following its binding.
		if !bl.IsBound(v) {
			return bind(v, x, bl)
		}
		return check(bl, x == v)
	case logic.Const, *logic.Comp:
		val = walk(bl, val)
		if y, ok := val.(logic.Var); ok && !bl.IsBound(y) {
			return unifyUnbound(y, v, bl)
		}
		return check(bl, logic.Eq(val, v))
	}
	panic(fmt.Sprintf("unify.unifyVar: unhandled type %T", t))
}

// unifyUnbound must be called with an unbound x.
func unifyUnbound(x logic.Var, t logic.Term, bl *bindings.List) (*bindings.List, bool) {
	switch v := t.(type) {
	case logic.Const:
		return bl.Bind(x, v), true
	case logic.Var, *logic.Comp:
		return bind(x, v, bl)
	}
	panic(fmt.Sprintf("unify.unifyUnbound: unhandled type %T", t))
}

// bind binds the unbound x to t, unless t already resolves to x, or the binding would
// make x part of its own value.
func bind(x logic.Var, t logic.Term, bl *bindings.List) (*bindings.List, bool) {
	val := bl.Resolve(t)
	if y, ok := val.(logic.Var); ok && y == x {
		return bl, true
	}
	if logic.Contains(val, x) {
		return nil, false
	}
	return bl.Bind(x, t), true
}

func check(bl *bindings.List, ok bool) (*bindings.List, bool) {
	if !ok {
		return nil, false
	}
	return bl, true
}

// walk follows var-to-var bindings from t, stopping at a non-var term or at an
// unbound var. Var cycles stop after visiting every binding once.
func walk(bl *bindings.List, t logic.Term) logic.Term {
	for i := 0; i < bl.Len(); i++ {
		x, ok := t.(logic.Var)
		if !ok {
			return t
		}
		val, ok := bl.Lookup(x)
		if !ok {
			return t
		}
		t = val
	}
	return t
}
