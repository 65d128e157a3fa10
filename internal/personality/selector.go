package personality

import "fmt"

// Descriptor is a question as presented to the user, annotated with the
// dichotomy it was drawn for.
type Descriptor struct {
	ID          int       `json:"id"`
	Dichotomy   Dichotomy `json:"dichotomy"`
	LeftLetter  Letter    `json:"left_letter"`
	RightLetter Letter    `json:"right_letter"`
	Prompt      string    `json:"prompt"`
	Left        string    `json:"left"`
	Right       string    `json:"right"`
}

type bias int

const (
	biasNeutral bias = iota
	biasLeft
	biasRight
)

func biasOf(q Question, d Dichotomy) bias {
	l, r := q.Weight(d.Left()), q.Weight(d.Right())
	switch {
	case l > r:
		return biasLeft
	case r > l:
		return biasRight
	}
	return biasNeutral
}

// subSeed offsets the rotation seed by the axis letters so the four
// shuffles in one window differ from each other.
func subSeed(seed int64, d Dichotomy) int64 {
	left, right := string(d.Left()), string(d.Right())
	return seed + 100*int64(left[0]) + int64(right[0])
}

func finalSeed(seed int64) int64 {
	return seed*31 + 17
}

// Select draws perDichotomy questions for every axis, balanced between the
// axis' two letters, with no id repeated across the whole quiz. The same
// corpus and seed always produce the same ordered output.
func Select(c *Corpus, perDichotomy int, seed int64) ([]Descriptor, error) {
	if perDichotomy <= 0 {
		return nil, fmt.Errorf("%w: per-dichotomy count must be positive, got %d", ErrInsufficientCorpus, perDichotomy)
	}

	shuffled := make(map[Dichotomy][]Question, len(Dichotomies))
	for _, d := range Dichotomies {
		qs := c.Questions(d)
		shuffle(qs, subSeed(seed, d))
		shuffled[d] = qs
	}

	used := make(map[int]bool, perDichotomy*len(Dichotomies))
	out := make([]Descriptor, 0, perDichotomy*len(Dichotomies))

	for _, d := range Dichotomies {
		picked := fillDichotomy(d, perDichotomy, shuffled, used)
		if len(picked) < perDichotomy {
			return nil, fmt.Errorf("%w: %s has %d of %d questions", ErrInsufficientCorpus, d, len(picked), perDichotomy)
		}
		for _, q := range picked {
			out = append(out, describe(q, d))
		}
	}

	shuffle(out, finalSeed(seed))
	return out, nil
}

type picker struct {
	d      Dichotomy
	target int
	used   map[int]bool
	picked []Question
	left   int
	right  int
}

func (p *picker) full() bool {
	return len(p.picked) >= p.target
}

func (p *picker) take(q Question) bool {
	if p.full() || p.used[q.ID] {
		return false
	}
	p.used[q.ID] = true
	p.picked = append(p.picked, q)
	switch biasOf(q, p.d) {
	case biasLeft:
		p.left++
	case biasRight:
		p.right++
	}
	return true
}

// takeUpTo takes unused questions from pool until n were taken or the
// quiz is full.
func (p *picker) takeUpTo(pool []Question, n int) {
	taken := 0
	for _, q := range pool {
		if taken >= n || p.full() {
			return
		}
		if p.take(q) {
			taken++
		}
	}
}

func (p *picker) takeAll(pool []Question) {
	p.takeUpTo(pool, len(pool))
}

// takeBalanced alternates between the two pools, always drawing from the
// side that currently has fewer picks while it still has candidates.
func (p *picker) takeBalanced(left, right []Question) {
	li, ri := 0, 0
	for !p.full() {
		for li < len(left) && p.used[left[li].ID] {
			li++
		}
		for ri < len(right) && p.used[right[ri].ID] {
			ri++
		}
		hasLeft, hasRight := li < len(left), ri < len(right)
		switch {
		case hasLeft && (!hasRight || p.left <= p.right):
			p.take(left[li])
			li++
		case hasRight:
			p.take(right[ri])
			ri++
		default:
			return
		}
	}
}

func partition(qs []Question, d Dichotomy) (left, right, neutral []Question) {
	for _, q := range qs {
		switch biasOf(q, d) {
		case biasLeft:
			left = append(left, q)
		case biasRight:
			right = append(right, q)
		default:
			neutral = append(neutral, q)
		}
	}
	return left, right, neutral
}

func fillDichotomy(d Dichotomy, n int, shuffled map[Dichotomy][]Question, used map[int]bool) []Question {
	p := &picker{d: d, target: n, used: used, picked: make([]Question, 0, n)}
	own := shuffled[d]
	left, right, neutral := partition(own, d)

	p.takeUpTo(left, (n+1)/2)
	p.takeUpTo(right, n/2)
	p.takeAll(neutral)

	if !p.full() {
		var others []Question
		for _, od := range Dichotomies {
			if od != d {
				others = append(others, shuffled[od]...)
			}
		}
		oLeft, oRight, oNeutral := partition(others, d)
		p.takeBalanced(oLeft, oRight)
		p.takeAll(oNeutral)
	}

	if !p.full() {
		p.takeAll(own)
		for _, od := range Dichotomies {
			p.takeAll(shuffled[od])
		}
	}

	return p.picked
}

func describe(q Question, d Dichotomy) Descriptor {
	return Descriptor{
		ID:          q.ID,
		Dichotomy:   d,
		LeftLetter:  d.Left(),
		RightLetter: d.Right(),
		Prompt:      q.Prompt,
		Left:        q.Left,
		Right:       q.Right,
	}
}
