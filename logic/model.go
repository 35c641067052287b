// Package logic implements the term model for a backward-chaining engine.
//
// A logic term falls in one of three categories:
//
// * constant: an atomic, self-denoting symbol.
//
// * variable: a placeholder, whose value is held externally in a binding list.
//
// * compound: a functor applied to an ordered list of terms, recursively.
//
// A literal is a predicate applied to a list of terms. A knowledge base is composed of
// ground literals (facts) and of rules of the form 'head :- lit1, lit2.', that must be
// read as "head holds if lit1 and lit2 hold".
//
// Terms are values: no operation in this package mutates a term after construction.
package logic

import (
	"fmt"
	"strings"
)

// ---- Basic types

// Term is a representation of a logic term.
//
// The only implementations are Const, Var and *Comp.
type Term interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	hasVar() bool
	withSuffix(suffix int) Term
}

// Const is an atomic term representing a symbol.
type Const struct {
	// Name is the symbol of a constant.
	Name string
}

// Var is a variable term.
type Var struct {
	// Name is the identifier for a var.
	Name string
	// Suffix distinguishes renamed copies of the same var. Vars written by the user
	// have suffix 0.
	Suffix int
}

// Comp is a compound term, representing a function application.
type Comp struct {
	// Functor is the function symbol of a comp.
	Functor string
	// Args is the list of terms within this term.
	Args    []Term
	hasVar_ bool
}

// Literal is a predicate applied to a list of terms.
// Note that Literal is not a Term, so it can't be used within compound terms.
type Literal struct {
	// Pred is the predicate symbol.
	Pred string
	// Args are the literal arguments.
	Args []Term
}

// Rule is a definite clause.
type Rule struct {
	// Head is the consequent of a rule.
	Head Literal
	// Body is the conjunction of antecedents. May be empty.
	Body    []Literal
	hasVar_ bool
}

// ---- Vars

// NewVar creates a new var.
//
// It panics if the name doesn't start with an uppercase letter or an underscore.
func NewVar(name string) Var {
	if !IsVar(name) {
		panic(fmt.Sprintf("NewVar: invalid name: %q", name))
	}
	return Var{Name: name}
}

// WithSuffix creates a new var with the same name and provided suffix. Used to
// generate vars from the same template.
func (x Var) WithSuffix(suffix int) Var {
	return Var{x.Name, suffix}
}

// ---- Compound terms

// NewComp creates a compound term.
func NewComp(functor string, args ...Term) *Comp {
	return &Comp{Functor: functor, Args: args, hasVar_: anyVar(args)}
}

// Indicator is a notation for a functor or predicate, usually shown as name/arity, e.g., f/2.
type Indicator struct {
	// Name is the functor or predicate symbol.
	Name string
	// Arity is the number of args.
	Arity int
}

func (i Indicator) String() string {
	return fmt.Sprintf("%s/%d", i.Name, i.Arity)
}

// Indicator returns the functor's indicator.
func (c *Comp) Indicator() Indicator {
	return Indicator{c.Functor, len(c.Args)}
}

func anyVar(terms []Term) bool {
	for _, term := range terms {
		if term.hasVar() {
			return true
		}
	}
	return false
}

// ---- Literals

// NewLiteral creates a literal.
func NewLiteral(pred string, args ...Term) Literal {
	return Literal{Pred: pred, Args: args}
}

// Indicator returns the predicate's indicator.
func (l Literal) Indicator() Indicator {
	return Indicator{l.Pred, len(l.Args)}
}

// IsGround returns whether the literal contains no variables.
func (l Literal) IsGround() bool {
	return !anyVar(l.Args)
}

// WithSuffix returns a copy of the literal with all vars renamed to the given suffix.
func (l Literal) WithSuffix(suffix int) Literal {
	if l.IsGround() {
		return l
	}
	args := make([]Term, len(l.Args))
	for i, arg := range l.Args {
		args[i] = arg.withSuffix(suffix)
	}
	return Literal{Pred: l.Pred, Args: args}
}

// ---- Rules

// NewRule returns a rule with the provided head and literals as body.
func NewRule(head Literal, body ...Literal) *Rule {
	hasVar := !head.IsGround()
	for _, lit := range body {
		if hasVar {
			break
		}
		hasVar = !lit.IsGround()
	}
	return &Rule{Head: head, Body: body, hasVar_: hasVar}
}

// WithSuffix returns a structurally identical rule where every variable is renamed
// with the given suffix. It's used to standardize rules apart.
func (r *Rule) WithSuffix(suffix int) *Rule {
	if !r.hasVar_ {
		return r
	}
	body := make([]Literal, len(r.Body))
	for i, lit := range r.Body {
		body[i] = lit.WithSuffix(suffix)
	}
	return &Rule{Head: r.Head.WithSuffix(suffix), Body: body, hasVar_: true}
}

// ---- withSuffix()

func (t Const) withSuffix(suffix int) Term { return t }
func (t Var) withSuffix(suffix int) Term   { return t.WithSuffix(suffix) }

func (t *Comp) withSuffix(suffix int) Term {
	if !t.hasVar_ {
		return t
	}
	args := make([]Term, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.withSuffix(suffix)
	}
	return &Comp{Functor: t.Functor, Args: args, hasVar_: true}
}

// ---- vars()

// Vars returns a set with all term variables, in insertion order.
func Vars(term Term) []Var {
	if !term.hasVar() {
		return nil
	}
	return term.vars(make(map[Var]struct{}), nil)
}

// Contains returns whether x occurs anywhere within term.
func Contains(term Term, x Var) bool {
	for _, y := range Vars(term) {
		if x == y {
			return true
		}
	}
	return false
}

func (t Const) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }

func (t Var) vars(seen map[Var]struct{}, xs []Var) []Var {
	if _, ok := seen[t]; ok {
		return xs
	}
	seen[t] = struct{}{}
	return append(xs, t)
}

func (t *Comp) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	for _, term := range t.Args {
		xs = term.vars(seen, xs)
	}
	return xs
}

// Vars returns a set with all variables, in insertion order.
func (l Literal) Vars() []Var {
	seen := make(map[Var]struct{})
	var xs []Var
	for _, term := range l.Args {
		xs = term.vars(seen, xs)
	}
	return xs
}

// Vars returns a set with all variables, in insertion order.
func (r *Rule) Vars() []Var {
	if !r.hasVar_ {
		return nil
	}
	seen := make(map[Var]struct{})
	var xs []Var
	for _, term := range r.Head.Args {
		xs = term.vars(seen, xs)
	}
	for _, lit := range r.Body {
		for _, term := range lit.Args {
			xs = term.vars(seen, xs)
		}
	}
	return xs
}

// ---- hasVar()

func (t Const) hasVar() bool { return false }
func (t Var) hasVar() bool   { return true }
func (t *Comp) hasVar() bool { return t.hasVar_ }

// IsGround returns whether term contains no variables.
func IsGround(term Term) bool {
	return !term.hasVar()
}

// ---- Eq()

// Eq returns whether t1 and t2 are identical terms.
//
// Note that this only takes into account the structure of terms, not whether
// any binding may make them identical.
func Eq(t1, t2 Term) bool {
	switch u := t1.(type) {
	case Const:
		v, ok := t2.(Const)
		return ok && u == v
	case Var:
		v, ok := t2.(Var)
		return ok && u == v
	case *Comp:
		v, ok := t2.(*Comp)
		return ok && u.Eq(v)
	case nil:
		return t2 == nil
	default:
		panic(fmt.Sprintf("logic.Eq: unhandled type %T", t1))
	}
}

// Eq returns whether this comp is equal to another.
func (t *Comp) Eq(other *Comp) bool {
	if t == other {
		return true
	}
	if t.Functor != other.Functor || len(t.Args) != len(other.Args) {
		return false
	}
	return eqAll(t.Args, other.Args)
}

// Eq returns whether this literal is equal to another.
func (l Literal) Eq(other Literal) bool {
	return l.Pred == other.Pred && len(l.Args) == len(other.Args) && eqAll(l.Args, other.Args)
}

// Eq returns whether this rule is equal to another.
func (r *Rule) Eq(other *Rule) bool {
	if !r.Head.Eq(other.Head) || len(r.Body) != len(other.Body) {
		return false
	}
	for i, lit := range r.Body {
		if !lit.Eq(other.Body[i]) {
			return false
		}
	}
	return true
}

func eqAll(ts1, ts2 []Term) bool {
	for i := range ts1 {
		if !Eq(ts1[i], ts2[i]) {
			return false
		}
	}
	return true
}

// ---- String()

func (t Const) String() string {
	return FormatConst(t.Name)
}

func (t Var) String() string {
	if t.Suffix > 0 {
		return fmt.Sprintf("%s_%d_", t.Name, t.Suffix)
	}
	return t.Name
}

func (t *Comp) String() string {
	return formatApp(t.Functor, t.Args)
}

func (l Literal) String() string {
	if len(l.Args) == 0 {
		return FormatConst(l.Pred)
	}
	return formatApp(l.Pred, l.Args)
}

func (r *Rule) String() string {
	head := r.Head.String()
	if len(r.Body) == 0 {
		return head + "."
	}
	body := make([]string, len(r.Body))
	for i, lit := range r.Body {
		body[i] = lit.String()
	}
	return fmt.Sprintf("%s :- %s.", head, strings.Join(body, ", "))
}

func formatApp(name string, terms []Term) string {
	args := make([]string, len(terms))
	for i, arg := range terms {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", FormatConst(name), strings.Join(args, ", "))
}
