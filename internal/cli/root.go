// Package cli implements the quizctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/stemsi/typequiz-backend/internal/personality"
)

type rootOptions struct {
	bankPath string
	asJSON   bool
}

// NewRootCommand builds the quizctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "quizctl",
		Short: "Inspect question selection and scoring offline",
		Long: `quizctl runs the selection and scoring engine without the server.

Examples:
  # Questions served in the fast quiz at a given time
  quizctl select --mode fast --at 2026-03-02T10:15:00Z

  # Score an answers file
  quizctl score --file answers.json

  # Verify a custom bank can serve a week of daily windows
  quizctl check --bank bank.yaml --rotation day --windows 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.bankPath, "bank", "", "question bank YAML (default: built-in bank)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON")

	root.AddCommand(
		newSelectCommand(opts),
		newScoreCommand(opts),
		newCheckCommand(opts),
	)
	return root
}

func (o *rootOptions) corpus() (*personality.Corpus, error) {
	if o.bankPath == "" {
		return personality.DefaultCorpus()
	}
	return personality.LoadBankFile(o.bankPath)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
