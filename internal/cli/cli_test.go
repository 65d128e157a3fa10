package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stemsi/typequiz-backend/internal/personality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandStructure(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "quizctl", root.Use)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"select", "score", "check"})
	assert.NotNil(t, root.PersistentFlags().Lookup("bank"))
	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
}

func TestSelectCommandFlags(t *testing.T) {
	cmd := newSelectCommand(&rootOptions{})
	assert.Equal(t, "select", cmd.Use)
	for _, name := range []string{"mode", "rotation", "seed", "at"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "fast", cmd.Flags().Lookup("mode").DefValue)
}

func TestSelectWithSeedMatchesEngine(t *testing.T) {
	out, err := run(t, "", "select", "--mode", "comprehensive", "--seed", "42", "--json")
	require.NoError(t, err)

	var got []personality.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	c, err := personality.DefaultCorpus()
	require.NoError(t, err)
	want, err := personality.Select(c, personality.ModeComprehensive.PerDichotomy(), 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSelectAtUsesWindowSeed(t *testing.T) {
	out, err := run(t, "", "select", "--at", "2026-03-02T10:15:30Z", "--rotation", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "mode=fast seed=2026061 questions=44")
	assert.Contains(t, out, "PROMPT")
}

func TestSelectRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "select", "--mode", "slow")
	assert.ErrorIs(t, err, personality.ErrUnknownMode)

	_, err = run(t, "", "select", "--rotation", "hour")
	assert.ErrorIs(t, err, personality.ErrUnknownGranularity)

	_, err = run(t, "", "select", "--at", "yesterday")
	assert.Error(t, err)
}

func TestScoreFromStdin(t *testing.T) {
	out, err := run(t, `[{"question_id": 1, "value": 2}, {"question_id": 1000, "value": 1}]`,
		"score", "--file", "-", "--mode", "fast", "--json")
	require.NoError(t, err)

	var res personality.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Type, 4)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 44, res.Expected)
	assert.Contains(t, res.Warning, "1 of 44")
}

func TestScoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"question_id": 1, "value": 0}]`), 0o600))

	out, err := run(t, "", "score", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "type: XXXX")
	assert.Contains(t, out, "E  50%")
}

func TestScoreErrors(t *testing.T) {
	_, err := run(t, "", "score")
	assert.Error(t, err)

	_, err = run(t, `[{"question_id": 1, "value": 9}]`, "score", "--file", "-")
	assert.ErrorIs(t, err, personality.ErrNoValidAnswers)

	_, err = run(t, `not json`, "score", "--file", "-")
	assert.Error(t, err)
}

func TestScoreSkipsUnreadableValues(t *testing.T) {
	_, err := run(t, `[{"question_id": 1}, {"question_id": 2, "value": null}]`, "score", "--file", "-")
	assert.ErrorIs(t, err, personality.ErrNoValidAnswers)

	out, err := run(t, `[{"question_id": 1, "value": 2}, {"question_id": 2, "value": 1.5}, {"question_id": 3, "value": "2"}]`,
		"score", "--file", "-", "--json")
	require.NoError(t, err)

	var res personality.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Neutral)
}

func TestCheckDefaultBank(t *testing.T) {
	out, err := run(t, "", "check", "--rotation", "day", "--windows", "30", "--from", "2026-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 96 questions, 30 day windows checked")
}

func TestCheckFailsOnSmallBank(t *testing.T) {
	var bank strings.Builder
	id := 1
	for _, d := range personality.Dichotomies {
		bank.WriteString(string(d) + ":\n")
		for i := 0; i < 12; i++ {
			letter := d.Left()
			if i%2 == 1 {
				letter = d.Right()
			}
			bank.WriteString("  - {id: ")
			bank.WriteString(strconv.Itoa(id))
			bank.WriteString(", prompt: p, left: a, right: b, weights: {")
			bank.WriteString(string(letter))
			bank.WriteString(": 0.1}}\n")
			id++
		}
	}
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bank.String()), 0o600))

	_, err := run(t, "", "check", "--bank", path, "--windows", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comprehensive")

	_, err = run(t, "", "check", "--windows", "0")
	assert.Error(t, err)
}
