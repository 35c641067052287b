package main

import (
	"fmt"

	"github.com/brunokim/backchain/store/sqlite"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import DB",
	Short: "Save the knowledge base into a SQLite store",
	Long: `Consults the knowledge base files and replaces the contents of the SQLite
store DB with them, creating it if needed. The store can then be consulted
like any other knowledge base file, if its name ends in .db or .sqlite.`,
	Example: `  backchain import --kb family.pl --kb rules.yaml family.db`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	k, err := loadKB(ctx)
	if err != nil {
		return err
	}
	st, err := sqlite.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Save(ctx, k); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	logger.Info("Imported knowledge base", zap.String("db", args[0]), zap.Strings("files", cfg.KnowledgeBase))
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d facts and %d rules to %s\n", len(k.Facts()), len(k.Rules()), args[0])
	return nil
}
