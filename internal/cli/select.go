package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stemsi/typequiz-backend/internal/personality"
)

func newSelectCommand(root *rootOptions) *cobra.Command {
	var (
		mode     string
		rotation string
		seed     int64
		at       string
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the questions served for a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := personality.ParseMode(mode)
			if err != nil {
				return err
			}
			corpus, err := root.corpus()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("seed") {
				g, err := personality.ParseGranularity(rotation)
				if err != nil {
					return err
				}
				t := time.Now()
				if at != "" {
					if t, err = time.Parse(time.RFC3339, at); err != nil {
						return fmt.Errorf("parse --at: %w", err)
					}
				}
				seed = personality.WindowSeed(t, g)
			}

			questions, err := personality.Select(corpus, m.PerDichotomy(), seed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.asJSON {
				return writeJSON(out, questions)
			}

			fmt.Fprintf(out, "mode=%s seed=%d questions=%d\n", m, seed, len(questions))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tAXIS\tPROMPT")
			for i, q := range questions {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, q.ID, q.Dichotomy, q.Prompt)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(personality.ModeFast), "fast or comprehensive")
	cmd.Flags().StringVar(&rotation, "rotation", string(personality.GranularityMinute), "minute or day")
	cmd.Flags().Int64Var(&seed, "seed", 0, "explicit seed, overrides --at and --rotation")
	cmd.Flags().StringVar(&at, "at", "", "RFC3339 time to derive the window seed from (default: now)")
	return cmd
}
