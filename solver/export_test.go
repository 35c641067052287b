package solver

import (
	"context"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/logic"
)

func ProveConjunction(s *Solver, goals []logic.Literal, bl *bindings.List) (*bindings.List, bool, error) {
	q := s.newQuery(context.Background())
	bl, _, ok, err := q.proveConjunction(goals, bl, 0)
	return bl, ok, err
}
