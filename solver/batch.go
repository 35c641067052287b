package solver

import (
	"context"

	"github.com/brunokim/backchain/logic"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one query in a batch.
type Result struct {
	Solution Solution
	OK       bool
	Err      error
}

// AskBatch runs independent queries concurrently and returns their results in
// input order. Failed proofs and depth errors are reported per query; the returned
// error is non-nil only if ctx is done before every query ran.
func (s *Solver) AskBatch(ctx context.Context, queries [][]logic.Literal) ([]Result, error) {
	results := make([]Result, len(queries))
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, goals := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			sol, ok, err := s.Ask(ctx, goals...)
			results[i] = Result{Solution: sol, OK: ok, Err: err}
			return nil
		})
	}
	return results, g.Wait()
}
