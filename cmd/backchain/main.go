package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/brunokim/backchain/config"
	"github.com/brunokim/backchain/consult"
	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/logging"
	"github.com/brunokim/backchain/metrics"
	"github.com/brunokim/backchain/solver"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath  string
	kbFiles     []string
	verbose     bool
	maxDepth    int
	metricsAddr string

	cfg           *config.Config
	logger        = zap.NewNop()
	collector     *metrics.Collector
	metricsServer *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "backchain",
	Short: "Backward-chaining inference over Horn clauses",
	Long: `backchain answers queries against a knowledge base of ground facts and
Horn-clause rules, by depth-first backward chaining without backtracking.

Knowledge bases are read from clause text files, YAML documents (.yaml, .yml)
or SQLite stores (.db, .sqlite), in the order given.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "backchain.yaml", "Config file; missing files use the defaults")
	rootCmd.PersistentFlags().StringArrayVarP(&kbFiles, "kb", "k", nil, "Knowledge base file to consult (repeatable, replaces the configured list)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging, including query traces")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Maximum nesting of rule expansions (0 for no limit)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and starts the logger and
// the metrics endpoint.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("kb") {
		cfg.KnowledgeBase = kbFiles
	}
	if flags.Changed("max-depth") {
		cfg.Solver.MaxDepth = maxDepth
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(cfg.Logging, verbose || cfg.Solver.Trace)
	if err != nil {
		return err
	}

	collector = nil
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.New(reg)
		startMetricsServer(cfg.Metrics.Addr, reg)
	}
	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer = &http.Server{Addr: addr, Handler: mux}
	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}(metricsServer)
	logger.Info("Serving metrics", zap.String("addr", addr))
}

func teardown() {
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
		metricsServer = nil
	}
	_ = logger.Sync()
}

// loadKB consults the configured knowledge base files.
func loadKB(ctx context.Context) (*kb.KB, error) {
	if len(cfg.KnowledgeBase) == 0 {
		logger.Warn("No knowledge base files given; every query will fail")
	}
	k, err := consult.Files(ctx, cfg.KnowledgeBase...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded knowledge base",
		zap.Strings("files", cfg.KnowledgeBase),
		zap.Int("facts", len(k.Facts())),
		zap.Int("rules", len(k.Rules())))
	return k, nil
}

func newSolver(k *kb.KB) *solver.Solver {
	opts := []solver.Option{
		solver.WithLogger(logger),
		solver.WithMaxDepth(cfg.Solver.MaxDepth),
		solver.WithConcurrency(cfg.Solver.BatchConcurrency),
	}
	if collector != nil {
		opts = append(opts, solver.WithObserver(collector))
	}
	return solver.New(k, opts...)
}
