package solver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/dsl"
	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/logic"
	"github.com/brunokim/backchain/solver"
	"github.com/brunokim/backchain/test_helpers"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	const_ = dsl.Const
	var_   = dsl.Var
	svar   = dsl.SVar
	comp   = dsl.Comp
	lit    = dsl.Lit
	lits   = dsl.Lits
	rule   = dsl.Rule
	rules  = dsl.Rules
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type binding = bindings.Binding

func mustKB(t *testing.T, facts []logic.Literal, rs []*logic.Rule) *kb.KB {
	t.Helper()
	k, err := kb.New(facts, rs)
	if err != nil {
		t.Fatalf("kb.New: got err: %v", err)
	}
	return k
}

// parent(tom, bob).
// parent(bob, ann).
// grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
func family(t *testing.T) *kb.KB {
	return mustKB(t,
		lits(
			lit("parent", const_("tom"), const_("bob")),
			lit("parent", const_("bob"), const_("ann"))),
		rules(
			rule(lit("grandparent", var_("X"), var_("Z")),
				lit("parent", var_("X"), var_("Y")),
				lit("parent", var_("Y"), var_("Z")))))
}

func TestAsk_Grandparent(t *testing.T) {
	s := solver.New(family(t))
	sol, ok, err := s.Ask(context.Background(), lit("grandparent", const_("tom"), const_("ann")))
	if err != nil {
		t.Fatalf("Ask: got err: %v", err)
	}
	if !ok {
		t.Fatalf("Ask: no proof")
	}
	want := []binding{
		{Var: svar("X", 1), Term: const_("tom")},
		{Var: svar("Z", 1), Term: const_("ann")},
		{Var: svar("Y", 1), Term: const_("bob")},
	}
	if diff := cmp.Diff(want, sol.Bindings.Bindings(), test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	if len(sol.Answer()) != 0 {
		t.Errorf("ground query has answer bindings: %v", sol.Answer())
	}
}

func TestAsk_GrandparentNoProof(t *testing.T) {
	s := solver.New(family(t))
	sol, ok, err := s.Ask(context.Background(), lit("grandparent", const_("ann"), const_("tom")))
	if err != nil {
		t.Fatalf("Ask: got err: %v", err)
	}
	if ok {
		t.Errorf("Ask: got proof with bindings %v", sol.Bindings)
	}
	if sol.Bindings != nil || sol.Proofs != nil {
		t.Errorf("failed query returned bindings %v and proofs %v", sol.Bindings, sol.Proofs)
	}
}

func TestAsk_FirstFactWins(t *testing.T) {
	s := solver.New(mustKB(t,
		lits(
			lit("p", const_("a")),
			lit("p", const_("b")),
			lit("q", const_("b"))),
		nil))
	sol, ok, err := s.Ask(context.Background(), lit("p", var_("X")))
	if err != nil || !ok {
		t.Fatalf("Ask(p(X)) = %t, %v", ok, err)
	}
	want := []binding{{Var: var_("X"), Term: const_("a")}}
	if diff := cmp.Diff(want, sol.Answer(), test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	// There is no backtracking into p(b) to satisfy q(X).
	_, ok, err = s.Ask(context.Background(), lit("p", var_("X")), lit("q", var_("X")))
	if err != nil {
		t.Fatalf("Ask: got err: %v", err)
	}
	if ok {
		t.Errorf("Ask(p(X), q(X)): got proof, want none")
	}
}

func TestAsk_FirstRuleWins(t *testing.T) {
	// r(X) :- s(X).
	// r(c).
	// s(X) :- t(X).
	s := solver.New(mustKB(t,
		lits(lit("t", const_("a"))),
		rules(
			rule(lit("r", var_("X")), lit("s", var_("X"))),
			rule(lit("r", const_("c"))),
			rule(lit("s", var_("X")), lit("t", var_("X"))))))
	sol, ok, err := s.Ask(context.Background(), lit("r", var_("Q")))
	if err != nil || !ok {
		t.Fatalf("Ask(r(Q)) = %t, %v", ok, err)
	}
	want := []binding{{Var: var_("Q"), Term: const_("a")}}
	if diff := cmp.Diff(want, sol.Answer(), test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	// When the first rule's body fails, the next rule is tried.
	sol, ok, err = s.Ask(context.Background(), lit("r", const_("c")))
	if err != nil || !ok {
		t.Fatalf("Ask(r(c)) = %t, %v", ok, err)
	}
	if p := sol.Proofs[0]; p.Rule == nil || !p.Rule.Eq(rule(lit("r", const_("c")))) {
		t.Errorf("r(c) proved by %v, want bodiless rule", p.Rule)
	}
}

// parent(a, b). parent(b, c). parent(c, d).
// anc(X, Y) :- parent(X, Y).
// anc(X, Y) :- parent(X, Z), anc(Z, Y).
func ancestry(t *testing.T) *kb.KB {
	return mustKB(t,
		lits(
			lit("parent", const_("a"), const_("b")),
			lit("parent", const_("b"), const_("c")),
			lit("parent", const_("c"), const_("d"))),
		rules(
			rule(lit("anc", var_("X"), var_("Y")),
				lit("parent", var_("X"), var_("Y"))),
			rule(lit("anc", var_("X"), var_("Y")),
				lit("parent", var_("X"), var_("Z")),
				lit("anc", var_("Z"), var_("Y")))))
}

func TestAsk_RecursiveRuleIsolation(t *testing.T) {
	s := solver.New(ancestry(t))
	sol, ok, err := s.Ask(context.Background(), lit("anc", const_("a"), const_("d")))
	if err != nil || !ok {
		t.Fatalf("Ask(anc(a, d)) = %t, %v", ok, err)
	}
	// Rule attempts are numbered 1 to 5; the second rule was used with suffixes 2 and 4.
	tests := []struct {
		x    logic.Var
		want logic.Term
	}{
		{svar("X", 2), const_("a")},
		{svar("Z", 2), const_("b")},
		{svar("Z", 4), const_("c")},
		{svar("Y", 5), const_("d")},
	}
	for _, test := range tests {
		if got := sol.Bindings.Resolve(test.x); !logic.Eq(got, test.want) {
			t.Errorf("%v = %v, want %v", test.x, got, test.want)
		}
	}
	if sol.Stats.RuleExpansions != 5 {
		t.Errorf("RuleExpansions = %d, want 5", sol.Stats.RuleExpansions)
	}
	if sol.Stats.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", sol.Stats.MaxDepth)
	}
}

func TestAsk_RecursiveRuleAnswer(t *testing.T) {
	s := solver.New(ancestry(t))
	tests := []struct {
		goal logic.Literal
		want []binding
	}{
		{lit("anc", const_("a"), var_("Who")), []binding{{Var: var_("Who"), Term: const_("b")}}},
		{lit("anc", var_("Who"), const_("d")), []binding{{Var: var_("Who"), Term: const_("c")}}},
		{lit("anc", var_("A"), var_("B")), []binding{{Var: var_("A"), Term: const_("a")}, {Var: var_("B"), Term: const_("b")}}},
	}
	for _, test := range tests {
		sol, ok, err := s.Ask(context.Background(), test.goal)
		if err != nil || !ok {
			t.Errorf("Ask(%v) = %t, %v", test.goal, ok, err)
			continue
		}
		if diff := cmp.Diff(test.want, sol.Answer(), test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("Ask(%v): (-want, +got)\n%s", test.goal, diff)
		}
	}
}

// A var bound to a compound with vars is compared by structural equality, so a
// provable goal may fail.
func TestAsk_BoundVarAgainstCompound(t *testing.T) {
	// s(f(W)).
	// q :- s(X), p(X).
	s := solver.New(mustKB(t,
		lits(lit("p", comp("f", const_("a")))),
		rules(
			rule(lit("s", comp("f", var_("W")))),
			rule(lit("q"), lit("s", var_("X")), lit("p", var_("X"))))))
	_, ok, err := s.Ask(context.Background(), lit("q"))
	if err != nil {
		t.Fatalf("Ask: got err: %v", err)
	}
	if ok {
		t.Errorf("Ask(q): got proof, want none")
	}
}

// Aliased vars are still occurs-checked: proving s(X, Y) would need X = f(X).
func TestAsk_OccursCheckThroughAliases(t *testing.T) {
	// r(A, A).
	// s(B, f(B)).
	s := solver.New(mustKB(t, nil,
		rules(
			rule(lit("r", var_("A"), var_("A"))),
			rule(lit("s", var_("B"), comp("f", var_("B")))))))
	sol, ok, err := s.Ask(context.Background(),
		lit("r", var_("X"), var_("Y")),
		lit("s", var_("X"), var_("Y")))
	if err != nil {
		t.Fatalf("Ask: got err: %v", err)
	}
	if ok {
		t.Errorf("Ask: got proof %v, want none", sol.Answer())
	}
}

func TestProveConjunction_Empty(t *testing.T) {
	s := solver.New(family(t))
	lists := []*bindings.List{
		nil,
		bindings.Empty.Bind(var_("X"), const_("a")),
		bindings.Empty.Bind(var_("X"), var_("Y")).Bind(var_("Y"), comp("f", var_("Z"))),
	}
	for _, in := range lists {
		got, ok, err := solver.ProveConjunction(s, nil, in)
		if err != nil || !ok {
			t.Errorf("ProveConjunction(nil, %v) = %t, %v", in, ok, err)
			continue
		}
		if got != in {
			t.Errorf("ProveConjunction(nil, %v) = %v, want unchanged", in, got)
		}
	}
	sol, ok, err := s.Ask(context.Background())
	if err != nil || !ok {
		t.Fatalf("Ask() = %t, %v", ok, err)
	}
	if sol.Bindings != nil || len(sol.Proofs) != 0 {
		t.Errorf("Ask() = %v, %v; want empty solution", sol.Bindings, sol.Proofs)
	}
}

func TestAsk_MaxDepth(t *testing.T) {
	// loop :- loop.
	s := solver.New(mustKB(t, nil, rules(rule(lit("loop"), lit("loop")))),
		solver.WithMaxDepth(50))
	_, ok, err := s.Ask(context.Background(), lit("loop"))
	if ok {
		t.Fatalf("Ask(loop) succeeded")
	}
	if !errors.Is(err, solver.ErrDepthExceeded) {
		t.Fatalf("Ask(loop): got err %v, want ErrDepthExceeded", err)
	}
	var depthErr *solver.DepthError
	if !errors.As(err, &depthErr) {
		t.Fatalf("Ask(loop): got err %T, want *DepthError", err)
	}
	if depthErr.MaxDepth != 50 {
		t.Errorf("MaxDepth = %d, want 50", depthErr.MaxDepth)
	}
}

func TestAsk_Cancel(t *testing.T) {
	s := solver.New(family(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := s.Ask(ctx, lit("grandparent", const_("tom"), var_("Z")))
	if ok {
		t.Errorf("Ask succeeded on a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Ask: got err %v, want context.Canceled", err)
	}
}

func TestAskBatch(t *testing.T) {
	s := solver.New(ancestry(t), solver.WithConcurrency(2))
	queries := [][]logic.Literal{
		lits(lit("anc", const_("a"), var_("X"))),
		lits(lit("anc", const_("d"), var_("X"))),
		lits(lit("anc", var_("X"), const_("d"))),
		lits(lit("parent", const_("b"), var_("X")), lit("parent", var_("X"), var_("Y"))),
	}
	results, err := s.AskBatch(context.Background(), queries)
	if err != nil {
		t.Fatalf("AskBatch: got err: %v", err)
	}
	type answer struct {
		OK       bool
		Bindings []binding
	}
	var got []answer
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("query %v: got err: %v", r.Solution.Goals, r.Err)
		}
		got = append(got, answer{r.OK, r.Solution.Answer()})
	}
	want := []answer{
		{true, []binding{{Var: var_("X"), Term: const_("b")}}},
		{false, nil},
		{true, []binding{{Var: var_("X"), Term: const_("c")}}},
		{true, []binding{{Var: var_("X"), Term: const_("c")}, {Var: var_("Y"), Term: const_("d")}}},
	}
	if diff := cmp.Diff(want, got, test_helpers.IgnoreUnexported, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
}

func TestAskBatch_Cancelled(t *testing.T) {
	s := solver.New(ancestry(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := s.AskBatch(ctx, [][]logic.Literal{lits(lit("anc", const_("a"), var_("X")))})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("AskBatch: got err %v, want context.Canceled", err)
	}
	if len(results) != 1 || results[0].OK {
		t.Errorf("AskBatch: got results %+v", results)
	}
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[solver.Outcome]int
	goals    int
}

func (o *countingObserver) ObserveQuery(stats solver.Stats, outcome solver.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
	o.goals += stats.Goals
}

func TestObserver(t *testing.T) {
	o := &countingObserver{outcomes: make(map[solver.Outcome]int)}
	k := mustKB(t, lits(lit("p", const_("a"))), rules(rule(lit("loop"), lit("loop"))))
	s := solver.New(k, solver.WithObserver(o), solver.WithMaxDepth(3))
	ctx := context.Background()
	s.Ask(ctx, lit("p", const_("a")))
	s.Ask(ctx, lit("p", const_("b")))
	s.Ask(ctx, lit("loop"))
	want := map[solver.Outcome]int{solver.Proved: 1, solver.Failed: 1, solver.Errored: 1}
	if diff := cmp.Diff(want, o.outcomes); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	// p(a), p(b), and loop at depths 0 to 3.
	if o.goals != 6 {
		t.Errorf("goals = %d, want 6", o.goals)
	}
}

func TestAsk_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := solver.New(family(t), solver.WithLogger(zap.New(core)))
	sol, _, _ := s.Ask(context.Background(), lit("grandparent", const_("tom"), var_("Z")))
	entries := logs.FilterMessage("rule").All()
	if len(entries) != 1 {
		t.Fatalf("got %d rule entries, want 1: %v", len(entries), logs.All())
	}
	if got := entries[0].ContextMap()["query"]; got != sol.QueryID.String() {
		t.Errorf("query field = %v, want %v", got, sol.QueryID)
	}
	if n := logs.FilterMessage("query proved").Len(); n != 1 {
		t.Errorf("got %d 'query proved' entries, want 1", n)
	}
}

func TestSolution_Explain(t *testing.T) {
	s := solver.New(family(t))
	sol, ok, err := s.Ask(context.Background(), lit("grandparent", const_("tom"), var_("Who")))
	if err != nil || !ok {
		t.Fatalf("Ask = %t, %v", ok, err)
	}
	want := "" +
		"grandparent(tom, ann)  <- grandparent(X_1_, Z_1_) :- parent(X_1_, Y_1_), parent(Y_1_, Z_1_).\n" +
		"  parent(tom, bob)  <- fact\n" +
		"  parent(bob, ann)  <- fact\n"
	if diff := cmp.Diff(want, sol.Explain()); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
}
