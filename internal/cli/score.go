package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/personality"
)

func newScoreCommand(root *rootOptions) *cobra.Command {
	var (
		file string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers file",
		Long: `Score a JSON array of {"question_id": N, "value": -2..2} objects.
Use --file - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			corpus, err := root.corpus()
			if err != nil {
				return err
			}

			answers, err := readAnswers(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			var opts personality.ScoreOptions
			if mode != "" {
				m, err := personality.ParseMode(mode)
				if err != nil {
					return err
				}
				opts.ExpectedCount = m.Total()
			}

			res, err := personality.ScoreWithOptions(corpus, answers, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.asJSON {
				return writeJSON(out, res)
			}

			fmt.Fprintf(out, "type: %s\n", res.Type)
			for _, d := range personality.Dichotomies {
				l, r := d.Left(), d.Right()
				fmt.Fprintf(out, "  %s %3d%%  %s %3d%%\n", l, res.Percentages[l], r, res.Percentages[r])
			}
			fmt.Fprintf(out, "answered=%d neutral=%d skipped=%d expected=%d\n", res.Answered, res.Neutral, res.Skipped, res.Expected)
			if res.Warning != "" {
				fmt.Fprintf(out, "warning: %s\n", res.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "answers JSON file, - for stdin")
	cmd.Flags().StringVar(&mode, "mode", "", "quiz mode the answers came from (default: inferred)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readAnswers(stdin io.Reader, path string) ([]personality.Answer, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		r = f
	}

	var items []model.AnswerItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return model.ToAnswers(items), nil
}
