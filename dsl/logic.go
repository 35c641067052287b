package dsl

import (
	"github.com/brunokim/backchain/logic"
)

func Terms(terms ...logic.Term) []logic.Term {
	return terms
}

func Const(name string) logic.Const {
	return logic.Const{Name: name}
}

func Var(name string) logic.Var {
	return logic.NewVar(name)
}

func SVar(name string, suffix int) logic.Var {
	return logic.NewVar(name).WithSuffix(suffix)
}

func Comp(functor string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(functor, args...)
}

func Lit(pred string, args ...logic.Term) logic.Literal {
	return logic.NewLiteral(pred, args...)
}

func Lits(lits ...logic.Literal) []logic.Literal {
	return lits
}

func Rule(head logic.Literal, body ...logic.Literal) *logic.Rule {
	return logic.NewRule(head, body...)
}

func Rules(rs ...*logic.Rule) []*logic.Rule {
	return rs
}

func Indicator(name string, arity int) logic.Indicator {
	return logic.Indicator{Name: name, Arity: arity}
}
