package personality

import (
	"fmt"
	"math"
)

// Corpus is an immutable, validated question bank indexed by id.
// Build it once at startup and share it between the selector and the scorer.
type Corpus struct {
	groups map[Dichotomy][]Question
	byID   map[int]Question
}

// NewCorpus validates groups and builds the lookup index. Question values are
// copied, so later changes to the input do not leak into the corpus.
func NewCorpus(groups map[Dichotomy][]Question) (*Corpus, error) {
	c := &Corpus{
		groups: make(map[Dichotomy][]Question, len(Dichotomies)),
		byID:   make(map[int]Question),
	}

	for d, questions := range groups {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: unknown dichotomy %q", ErrInvalidCorpus, d)
		}

		list := make([]Question, 0, len(questions))
		for _, q := range questions {
			if q.Dichotomy == "" {
				q.Dichotomy = d
			}
			if q.Dichotomy != d {
				return nil, fmt.Errorf("%w: question %d declares %s but is listed under %s", ErrInvalidCorpus, q.ID, q.Dichotomy, d)
			}
			if prev, dup := c.byID[q.ID]; dup {
				return nil, fmt.Errorf("%w: question id %d appears under %s and %s", ErrInvalidCorpus, q.ID, prev.Dichotomy, d)
			}

			weights := make(map[Letter]float64, len(q.Weights))
			for l, w := range q.Weights {
				if !l.Valid() {
					return nil, fmt.Errorf("%w: question %d has weight for unknown letter %q", ErrInvalidCorpus, q.ID, l)
				}
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return nil, fmt.Errorf("%w: question %d has invalid weight %v for %s", ErrInvalidCorpus, q.ID, w, l)
				}
				weights[l] = w
			}
			q.Weights = weights

			c.byID[q.ID] = q
			list = append(list, q)
		}
		c.groups[d] = list
	}

	return c, nil
}

// Lookup returns the question with the given id.
func (c *Corpus) Lookup(id int) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Questions returns a copy of the questions listed under d, in corpus order.
func (c *Corpus) Questions(d Dichotomy) []Question {
	src := c.groups[d]
	out := make([]Question, len(src))
	copy(out, src)
	return out
}

// Size returns the total number of questions.
func (c *Corpus) Size() int {
	return len(c.byID)
}
