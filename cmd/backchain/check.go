package main

import (
	"fmt"

	"github.com/brunokim/backchain/consult"
	"github.com/brunokim/backchain/kb"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [FILE...]",
	Short: "Validate knowledge base files",
	Long: `Consults every file, reporting syntax errors and non-ground facts, and prints
how many facts and rules each one holds. Without arguments, checks the configured
knowledge base.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		files = cfg.KnowledgeBase
	}
	if len(files) == 0 {
		return fmt.Errorf("no knowledge base files to check")
	}
	out := cmd.OutOrStdout()
	kbs := make([]*kb.KB, len(files))
	for i, file := range files {
		k, err := consult.File(cmd.Context(), file)
		if err != nil {
			return err
		}
		kbs[i] = k
		fmt.Fprintf(out, "%s: %d facts, %d rules\n", file, len(k.Facts()), len(k.Rules()))
	}
	total := kb.Merge(kbs...)
	fmt.Fprintf(out, "total: %d facts, %d rules, %d predicates\n",
		len(total.Facts()), len(total.Rules()), len(total.Predicates()))
	return nil
}
