package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/stemsi/typequiz-backend/internal/personality"
)

func newCheckCommand(root *rootOptions) *cobra.Command {
	var (
		rotation string
		windows  int
		from     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a bank serves every mode for consecutive windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if windows <= 0 {
				return fmt.Errorf("--windows must be positive")
			}
			g, err := personality.ParseGranularity(rotation)
			if err != nil {
				return err
			}
			corpus, err := root.corpus()
			if err != nil {
				return err
			}

			start := time.Now().UTC()
			if from != "" {
				if start, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("parse --from: %w", err)
				}
			}

			step := time.Minute
			if g == personality.GranularityDay {
				step = 24 * time.Hour
			}

			for i := 0; i < windows; i++ {
				seed := personality.WindowSeed(start.Add(time.Duration(i)*step), g)
				if err := checkWindow(corpus, seed); err != nil {
					return fmt.Errorf("window %d (seed %d): %w", i, seed, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d questions, %d %s windows checked\n", corpus.Size(), windows, g)
			return nil
		},
	}

	cmd.Flags().StringVar(&rotation, "rotation", string(personality.GranularityMinute), "minute or day")
	cmd.Flags().IntVar(&windows, "windows", 60, "number of consecutive windows to check")
	cmd.Flags().StringVar(&from, "from", "", "RFC3339 start time (default: now)")
	return cmd
}

// checkWindow selects both modes for seed and verifies size and uniqueness.
func checkWindow(c *personality.Corpus, seed int64) error {
	for _, m := range []personality.Mode{personality.ModeFast, personality.ModeComprehensive} {
		questions, err := personality.Select(c, m.PerDichotomy(), seed)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		if len(questions) != m.Total() {
			return fmt.Errorf("%s: got %d questions, want %d", m, len(questions), m.Total())
		}
		seen := make(map[int]bool, len(questions))
		for _, q := range questions {
			if seen[q.ID] {
				return fmt.Errorf("%s: question %d selected twice", m, q.ID)
			}
			seen[q.ID] = true
		}
	}
	return nil
}
