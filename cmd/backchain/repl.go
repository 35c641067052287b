package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/brunokim/backchain/parser"
	"github.com/brunokim/backchain/solver"

	"github.com/chzyer/readline"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var watch bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive query loop",
	Long: `Reads queries ending with '.' and prints their answers. A query may span
several lines.

Commands:
  :facts   list the facts
  :rules   list the rules
  :reload  consult the knowledge base files again
  :help    show this help
  :quit    exit (as does Ctrl-D)`,
	Args: cobra.NoArgs,
}

func init() {
	// Set here rather than in the literal to break the replCmd -> runREPL -> eval -> replCmd initialization cycle.
	replCmd.RunE = runREPL
	replCmd.Flags().BoolVar(&watch, "watch", false, "Reload the knowledge base when its files change")
}

type repl struct {
	// mu is held while running a command or reloading, so that their output doesn't
	// interleave and the solver changes only between queries.
	mu     sync.Mutex
	out    io.Writer
	solver *solver.Solver
}

func (r *repl) reload(ctx context.Context) error {
	k, err := loadKB(ctx)
	if err != nil {
		return err
	}
	r.solver = newSolver(k)
	fmt.Fprintf(r.out, "%% consulted %d facts and %d rules\n", len(k.Facts()), len(k.Rules()))
	return nil
}

// reloadChanged reloads the knowledge base after a file changed, waiting for any
// running command to finish.
func (r *repl) reloadChanged(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.reload(ctx); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

// eval runs a command or a complete query. It returns true when the user asks to quit.
func (r *repl) eval(ctx context.Context, input string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	input = strings.TrimSpace(input)
	switch input {
	case "":
		return false
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(r.out, replCmd.Long)
		return false
	case ":facts":
		for _, fact := range r.solver.KB().Facts() {
			fmt.Fprintf(r.out, "%v.\n", fact)
		}
		return false
	case ":rules":
		for _, rule := range r.solver.KB().Rules() {
			fmt.Fprintln(r.out, rule)
		}
		return false
	case ":reload":
		if err := r.reload(ctx); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		return false
	}
	if strings.HasPrefix(input, ":") {
		fmt.Fprintf(r.out, "unknown command %s; try :help\n", input)
		return false
	}
	goals, err := parser.ParseQuery(input)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return false
	}
	// Ctrl-C interrupts a running query, not the REPL.
	queryCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT)
	defer stop()
	if err := askOne(queryCtx, r.solver, r.out, goals); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
	return false
}

func runREPL(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            filepath.Join(os.TempDir(), "backchain-history"),
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              ":quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	r := &repl{out: rl.Stdout()}
	if err := r.reload(cmd.Context()); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if watch {
		g.Go(func() error {
			err := r.watch(ctx, cfg.KnowledgeBase)
			if err != nil {
				// Unblocks the read loop.
				rl.Close()
			}
			return err
		})
	}
	g.Go(func() error {
		defer cancel()
		for {
			input, err := readQuery(rl)
			if err != nil {
				return nil
			}
			if r.eval(ctx, input) {
				return nil
			}
		}
	})
	return g.Wait()
}

// readQuery reads lines until a command or a line ending with '.'.
func readQuery(rl *readline.Instance) (string, error) {
	rl.SetPrompt("?- ")
	var lines []string
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			lines = nil
			rl.SetPrompt("?- ")
			continue
		}
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if len(lines) == 0 && strings.HasPrefix(line, ":") {
			return line, nil
		}
		lines = append(lines, line)
		if !strings.HasSuffix(line, ".") {
			rl.SetPrompt("|  ")
			continue
		}
		break
	}
	query := strings.Join(lines, " ")
	rl.SaveHistory(query)
	return query, nil
}

// watch reloads the knowledge base whenever one of files is written, created or
// renamed. Directories are watched so that editors replacing files are noticed.
func (r *repl) watch(ctx context.Context, files []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}
	logger.Debug("Watching knowledge base", zap.Strings("files", files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[event.Name] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("Knowledge base changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			r.reloadChanged(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))
		}
	}
}
