package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/brunokim/backchain/bindings"
	"github.com/brunokim/backchain/logic"
	"github.com/brunokim/backchain/parser"
	"github.com/brunokim/backchain/solver"

	"github.com/spf13/cobra"
)

var (
	explain     bool
	allBindings bool
)

var askCmd = &cobra.Command{
	Use:   "ask QUERY...",
	Short: "Answer queries against the knowledge base",
	Long: `Each argument is a query: a comma-separated conjunction of literals, with an
optional final period. Queries run concurrently and are printed in order.

A proved query prints the bindings of its vars, or "true." when it has none.
A query without proof prints "false.".`,
	Example: `  backchain ask --kb family.pl 'grandparent(tom, Who)'
  backchain ask --kb family.pl --explain 'parent(tom, X), parent(X, Y)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&explain, "explain", false, "Print the proof tree of each answer")
	askCmd.Flags().BoolVar(&allBindings, "all-bindings", false, "Print every binding, including renamed rule vars")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queries := make([][]logic.Literal, len(args))
	for i, arg := range args {
		goals, err := parser.ParseQuery(arg)
		if err != nil {
			return fmt.Errorf("query %q: %w", arg, err)
		}
		queries[i] = goals
	}
	k, err := loadKB(ctx)
	if err != nil {
		return err
	}
	results, err := newSolver(k).AskBatch(ctx, queries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var numErrors int
	for i, r := range results {
		if len(args) > 1 {
			fmt.Fprintf(out, "?- %s\n", args[i])
		}
		if r.Err != nil {
			numErrors++
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", r.Err)
			continue
		}
		printSolution(out, r.Solution, r.OK)
	}
	if numErrors > 0 {
		return fmt.Errorf("%d of %d queries failed with errors", numErrors, len(results))
	}
	return nil
}

func printSolution(w io.Writer, sol solver.Solution, ok bool) {
	if !ok {
		fmt.Fprintln(w, "false.")
		return
	}
	if answer := sol.Answer(); len(answer) > 0 {
		fmt.Fprintf(w, "%s.\n", bindings.Format(answer))
	} else {
		fmt.Fprintln(w, "true.")
	}
	if allBindings {
		fmt.Fprintf(w, "%% bindings: %v\n", sol.Bindings)
	}
	if explain {
		fmt.Fprint(w, sol.Explain())
	}
}

// askOne runs a single query, as the REPL does.
func askOne(ctx context.Context, s *solver.Solver, w io.Writer, goals []logic.Literal) error {
	sol, ok, err := s.Ask(ctx, goals...)
	if err != nil {
		return err
	}
	printSolution(w, sol, ok)
	return nil
}
