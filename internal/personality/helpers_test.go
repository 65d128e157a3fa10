package personality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func q(id int, d Dichotomy, weights map[Letter]float64) Question {
	return Question{
		ID:        id,
		Dichotomy: d,
		Prompt:    "prompt",
		Left:      "left",
		Right:     "right",
		Weights:   weights,
	}
}

func mustCorpus(t *testing.T, groups map[Dichotomy][]Question) *Corpus {
	t.Helper()
	c, err := NewCorpus(groups)
	require.NoError(t, err)
	return c
}

func defaultCorpus(t *testing.T) *Corpus {
	t.Helper()
	c, err := DefaultCorpus()
	require.NoError(t, err)
	return c
}

// balancedGroup builds n questions for d alternating left and right weights,
// starting at id.
func balancedGroup(d Dichotomy, id, n int) []Question {
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		l := d.Left()
		if i%2 == 1 {
			l = d.Right()
		}
		out = append(out, q(id+i, d, map[Letter]float64{l: 0.2}))
	}
	return out
}
