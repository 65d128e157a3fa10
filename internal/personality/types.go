// Package personality implements question selection and Likert scoring for
// the four-dichotomy personality quiz. It performs no I/O and holds no mutable
// state, so every function is safe for concurrent use.
package personality

import "fmt"

// Letter is one of the eight trait letters.
type Letter string

const (
	E Letter = "E"
	I Letter = "I"
	S Letter = "S"
	N Letter = "N"
	T Letter = "T"
	F Letter = "F"
	J Letter = "J"
	P Letter = "P"
)

// Letters lists the trait letters in dichotomy order.
var Letters = []Letter{E, I, S, N, T, F, J, P}

var opposites = map[Letter]Letter{
	E: I, I: E,
	S: N, N: S,
	T: F, F: T,
	J: P, P: J,
}

// Opposite returns the dichotomy partner of l, or "" for an unknown letter.
func (l Letter) Opposite() Letter {
	return opposites[l]
}

// Valid reports whether l is one of the eight trait letters.
func (l Letter) Valid() bool {
	_, ok := opposites[l]
	return ok
}

// Dichotomy identifies one of the four axes.
type Dichotomy string

const (
	EI Dichotomy = "EI"
	SN Dichotomy = "SN"
	TF Dichotomy = "TF"
	JP Dichotomy = "JP"
)

// Dichotomies lists the axes in the order the type string is built.
var Dichotomies = []Dichotomy{EI, SN, TF, JP}

// Left returns the first-listed letter of the pair (E, S, T, J).
func (d Dichotomy) Left() Letter {
	if !d.Valid() {
		return ""
	}
	return Letter(d[:1])
}

// Right returns the second-listed letter of the pair (I, N, F, P).
func (d Dichotomy) Right() Letter {
	if !d.Valid() {
		return ""
	}
	return Letter(d[1:])
}

// Valid reports whether d is one of the four axes.
func (d Dichotomy) Valid() bool {
	switch d {
	case EI, SN, TF, JP:
		return true
	}
	return false
}

// String renders the pair as "E/I".
func (d Dichotomy) String() string {
	if !d.Valid() {
		return string(d)
	}
	return fmt.Sprintf("%s/%s", d.Left(), d.Right())
}

// Question is an immutable corpus entry. Weights describe how strongly
// choosing the right-hand option evidences each letter.
type Question struct {
	ID        int                `json:"id" yaml:"id"`
	Dichotomy Dichotomy          `json:"dichotomy" yaml:"dichotomy"`
	Prompt    string             `json:"prompt" yaml:"prompt"`
	Left      string             `json:"left" yaml:"left"`
	Right     string             `json:"right" yaml:"right"`
	Weights   map[Letter]float64 `json:"weights" yaml:"weights"`
}

// Weight returns the weight for l, zero when absent.
func (q Question) Weight(l Letter) float64 {
	return q.Weights[l]
}

// Answer is one submitted Likert response. Negative values favour the left
// option, positive the right one, zero is neutral.
type Answer struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"value"`
}

// Scores holds the accumulated, non-negative score of every letter.
type Scores map[Letter]float64

// Percentages holds the normalised percentage of every letter. Each
// dichotomy pair sums to exactly 100.
type Percentages map[Letter]int

// NeutralType is returned when every valid answer was neutral.
const NeutralType = "XXXX"

// Result is the outcome of scoring one submission.
type Result struct {
	Type        string      `json:"type"`
	Scores      Scores      `json:"scores"`
	Percentages Percentages `json:"percentages"`
	Warning     string      `json:"warning,omitempty"`
	Answered    int         `json:"answered"`
	Neutral     int         `json:"neutral"`
	Skipped     int         `json:"skipped"`
	Expected    int         `json:"expected"`
}

// IsNeutral reports whether r carries the unclassifiable sentinel type.
func (r *Result) IsNeutral() bool {
	return r.Type == NeutralType
}

func emptyScores() Scores {
	s := make(Scores, len(Letters))
	for _, l := range Letters {
		s[l] = 0
	}
	return s
}
