package personality

import (
	"fmt"
	"math"
	"strings"
)

const (
	// ShortQuizAnswers is the answer count of a fast-mode quiz.
	ShortQuizAnswers = 44
	// FullQuizAnswers is the answer count of a comprehensive quiz.
	FullQuizAnswers = 88

	NeutralWarning = "Your responses were too neutral to determine a personality type. Try picking a side on more questions."
)

// ScoreOptions tunes Score.
type ScoreOptions struct {
	// ExpectedCount overrides the submitted-volume heuristic used for the
	// completeness warning. Zero keeps the heuristic.
	ExpectedCount int
}

// validation is the output of the answer filter.
type validation struct {
	valid   []Answer
	neutral int
	skipped int
}

func validLikert(v int) bool {
	return v >= -2 && v <= 2
}

// filterAnswers drops answers with an out-of-range value, an unknown
// question id or an id already accepted earlier in the list. An id is only
// marked seen once an answer for it is accepted, so a valid answer that
// follows an invalid one for the same id is still scored.
func filterAnswers(c *Corpus, answers []Answer) validation {
	seen := make(map[int]bool, len(answers))
	v := validation{valid: make([]Answer, 0, len(answers))}
	for _, a := range answers {
		if !validLikert(a.Value) || seen[a.QuestionID] {
			v.skipped++
			continue
		}
		if _, ok := c.Lookup(a.QuestionID); !ok {
			v.skipped++
			continue
		}
		seen[a.QuestionID] = true
		v.valid = append(v.valid, a)
		if a.Value == 0 {
			v.neutral++
		}
	}
	return v
}

// ExpectedAnswers infers the quiz length from the number of submitted answers.
// Anything above a fast quiz is treated as comprehensive, so a partial
// comprehensive submission of 44 or fewer answers counts as fast.
func ExpectedAnswers(submitted int) int {
	if submitted > ShortQuizAnswers {
		return FullQuizAnswers
	}
	return ShortQuizAnswers
}

// Score converts answers into a Result using the submitted-volume heuristic
// for the expected answer count.
func Score(c *Corpus, answers []Answer) (*Result, error) {
	return ScoreWithOptions(c, answers, ScoreOptions{})
}

// ScoreWithOptions converts answers into a Result. The only error is
// ErrNoValidAnswers; every other irregular input yields a Result, possibly
// with a warning or the NeutralType sentinel.
func ScoreWithOptions(c *Corpus, answers []Answer, opts ScoreOptions) (*Result, error) {
	v := filterAnswers(c, answers)

	expected := opts.ExpectedCount
	if expected <= 0 {
		expected = ExpectedAnswers(len(answers))
	}

	if len(v.valid) == 0 {
		return nil, fmt.Errorf("%w: %d submitted, %d skipped", ErrNoValidAnswers, len(answers), v.skipped)
	}

	res := &Result{
		Answered: len(v.valid),
		Neutral:  v.neutral,
		Skipped:  v.skipped,
		Expected: expected,
	}

	if v.neutral == len(v.valid) {
		res.Type = NeutralType
		res.Scores = emptyScores()
		res.Percentages = evenPercentages()
		res.Warning = NeutralWarning
		return res, nil
	}

	res.Scores = accumulate(c, v.valid)
	res.Type = resolveType(res.Scores)
	res.Percentages = normalize(res.Scores)

	if res.Answered < expected {
		res.Warning = fmt.Sprintf("You answered %d of %d questions. Results may be less accurate.", res.Answered, expected)
	}

	return res, nil
}

// accumulate adds |value|*weight to each weighted letter for a right-leaning
// answer, or to the letter's partner for a left-leaning one. Scores never
// go negative.
func accumulate(c *Corpus, valid []Answer) Scores {
	scores := emptyScores()
	for _, a := range valid {
		if a.Value == 0 {
			continue
		}
		q, _ := c.Lookup(a.QuestionID)
		strength := math.Abs(float64(a.Value))
		isRight := a.Value > 0
		for l, w := range q.Weights {
			if w == 0 {
				continue
			}
			target := l
			if !isRight {
				target = l.Opposite()
			}
			scores[target] += strength * w
		}
	}
	return scores
}

// resolveType picks the stronger letter of each pair. Ties go to the
// first-listed letter (E, S, T, J).
func resolveType(s Scores) string {
	var b strings.Builder
	for _, d := range Dichotomies {
		a, o := d.Left(), d.Right()
		if s[a] >= s[o] {
			b.WriteString(string(a))
		} else {
			b.WriteString(string(o))
		}
	}
	return b.String()
}

func normalize(s Scores) Percentages {
	pct := make(Percentages, len(Letters))
	for _, d := range Dichotomies {
		a, b := d.Left(), d.Right()
		pa, pb := pairPercent(s[a], s[b])
		pct[a], pct[b] = pa, pb
	}
	return pct
}

// pairPercent subtracts the smaller score from both sides before taking the
// ratio. The second value is derived from the first so the pair always sums
// to 100.
func pairPercent(a, b float64) (int, int) {
	lo := math.Min(a, b)
	normA, normB := a-lo, b-lo
	total := normA + normB
	if total == 0 {
		return 50, 50
	}
	pa := int(math.Floor(normA/total*100 + 0.5))
	if pa < 0 {
		pa = 0
	} else if pa > 100 {
		pa = 100
	}
	return pa, 100 - pa
}

func evenPercentages() Percentages {
	pct := make(Percentages, len(Letters))
	for _, l := range Letters {
		pct[l] = 50
	}
	return pct
}
