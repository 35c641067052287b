// Package solver proves queries against a knowledge base by backward chaining.
//
// The search is depth-first and does not backtrack: a goal is proved by the first
// fact that unifies with it, or else by the first rule whose head unifies with it
// and whose body can be proved. Each rule gets a single attempt per goal, so the
// order of facts and rules in the knowledge base determines what can be proved.
package solver

import (
	"context"
	"fmt"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/logic"
	"github.com/brunokim/backchain/unify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Solver answers queries against a fixed knowledge base. It holds no per-query
// state and may be used from multiple goroutines.
type Solver struct {
	kb          *kb.KB
	logger      *zap.Logger
	maxDepth    int
	concurrency int
	observer    Observer
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger for query tracing, emitted at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// WithMaxDepth caps the nesting of rule expansions. Zero means no cap.
func WithMaxDepth(depth int) Option {
	return func(s *Solver) {
		s.maxDepth = depth
	}
}

// WithConcurrency limits how many queries AskBatch runs at once.
func WithConcurrency(n int) Option {
	return func(s *Solver) {
		s.concurrency = n
	}
}

// WithObserver registers an observer notified after every query.
func WithObserver(o Observer) Option {
	return func(s *Solver) {
		s.observer = o
	}
}

// New returns a solver for the knowledge base.
func New(k *kb.KB, opts ...Option) *Solver {
	s := &Solver{
		kb:          k,
		logger:      zap.NewNop(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// KB returns the solver's knowledge base.
func (s *Solver) KB() *kb.KB {
	return s.kb
}

// Stats counts the work done by a query.
type Stats struct {
	Goals          int
	Unifications   int
	RuleExpansions int
	MaxDepth       int
}

// Solution is the outcome of a query.
type Solution struct {
	QueryID uuid.UUID
	Goals   []logic.Literal
	// Bindings is the full binding list, including vars introduced by renamed rules.
	Bindings *bindings.List
	// Proofs has one entry per goal. Nil if the query failed.
	Proofs []*Proof
	Stats  Stats
}

// Answer returns the bindings of the query's own vars, resolved.
func (sol Solution) Answer() []bindings.Binding {
	var xs []logic.Var
	seen := make(map[logic.Var]struct{})
	for _, goal := range sol.Goals {
		for _, x := range goal.Vars() {
			if _, ok := seen[x]; ok {
				continue
			}
			seen[x] = struct{}{}
			xs = append(xs, x)
		}
	}
	return sol.Bindings.Restrict(xs)
}

// Ask proves the conjunction of goals, left to right.
//
// It returns false when there is no proof, which is not an error. Errors are
// returned only when the depth cap is exceeded or ctx is done.
func (s *Solver) Ask(ctx context.Context, goals ...logic.Literal) (Solution, bool, error) {
	q := s.newQuery(ctx)
	q.log.Debug("query", zap.Stringers("goals", goals))
	bl, proofs, ok, err := q.proveConjunction(goals, bindings.Empty, 0)
	sol := Solution{
		QueryID:  q.id,
		Goals:    goals,
		Bindings: bl,
		Proofs:   proofs,
		Stats:    q.stats,
	}
	outcome := Proved
	switch {
	case err != nil:
		outcome = Errored
		err = fmt.Errorf("query %s: %w", q.id, err)
		q.log.Debug("query error", zap.Error(err))
	case !ok:
		outcome = Failed
		q.log.Debug("query failed", zap.Int("goals", q.stats.Goals))
	default:
		q.log.Debug("query proved", zap.Stringer("bindings", bl), zap.Int("goals", q.stats.Goals))
	}
	if s.observer != nil {
		s.observer.ObserveQuery(sol.Stats, outcome)
	}
	if err != nil || !ok {
		sol.Bindings, sol.Proofs = nil, nil
		return sol, false, err
	}
	return sol, true, nil
}

// query holds the state of a single Ask call.
type query struct {
	*Solver
	ctx    context.Context
	id     uuid.UUID
	log    *zap.Logger
	suffix int
	stats  Stats
}

func (s *Solver) newQuery(ctx context.Context) *query {
	id := uuid.New()
	return &query{
		Solver: s,
		ctx:    ctx,
		id:     id,
		log:    s.logger.With(zap.String("query", id.String())),
	}
}

// proveLiteral finds the first fact, or else the first rule, that proves goal under bl.
func (q *query) proveLiteral(goal logic.Literal, bl *bindings.List, depth int) (*bindings.List, *Proof, bool, error) {
	if err := q.ctx.Err(); err != nil {
		return nil, nil, false, err
	}
	if q.maxDepth > 0 && depth > q.maxDepth {
		return nil, nil, false, &DepthError{Goal: bl.ResolveLiteral(goal), MaxDepth: q.maxDepth}
	}
	q.stats.Goals++
	if depth > q.stats.MaxDepth {
		q.stats.MaxDepth = depth
	}
	for _, fact := range q.kb.Facts() {
		if fact.Pred != goal.Pred {
			continue
		}
		q.stats.Unifications++
		if bl1, ok := unify.Literals(goal, fact, bl); ok {
			q.log.Debug("fact", zap.Stringer("goal", goal), zap.Stringer("fact", fact), zap.Int("depth", depth))
			return bl1, &Proof{Goal: goal, Fact: fact}, true, nil
		}
	}
	for _, r := range q.kb.Rules() {
		if r.Head.Pred != goal.Pred {
			continue
		}
		q.suffix++
		renamed := r.WithSuffix(q.suffix)
		q.stats.Unifications++
		bl1, ok := unify.Literals(goal, renamed.Head, bl)
		if !ok {
			continue
		}
		q.stats.RuleExpansions++
		q.log.Debug("rule", zap.Stringer("goal", goal), zap.Stringer("rule", renamed), zap.Int("depth", depth))
		bl2, children, ok, err := q.proveConjunction(renamed.Body, bl1, depth+1)
		if err != nil {
			return nil, nil, false, err
		}
		if ok {
			return bl2, &Proof{Goal: goal, Rule: renamed, Children: children}, true, nil
		}
	}
	q.log.Debug("no proof", zap.Stringer("goal", goal), zap.Int("depth", depth))
	return nil, nil, false, nil
}

// proveConjunction proves goals in order, threading bindings from each into the next.
func (q *query) proveConjunction(goals []logic.Literal, bl *bindings.List, depth int) (*bindings.List, []*Proof, bool, error) {
	proofs := make([]*Proof, 0, len(goals))
	for _, goal := range goals {
		var proof *Proof
		var ok bool
		var err error
		bl, proof, ok, err = q.proveLiteral(goal, bl, depth)
		if err != nil || !ok {
			return nil, nil, false, err
		}
		proofs = append(proofs, proof)
	}
	return bl, proofs, true, nil
}
