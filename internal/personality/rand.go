package personality

// The generator parameters are fixed so that a seed yields the same sequence
// on every platform and release.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// lcg is a small linear-congruential generator. It is not safe for concurrent
// use; every shuffle owns its own instance.
type lcg struct {
	state int64
}

func newLCG(seed int64) *lcg {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &lcg{state: s}
}

// Float returns the next value in [0, 1).
func (g *lcg) Float() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / lcgModulus
}

// Intn returns the next value in [0, n).
func (g *lcg) Intn(n int) int {
	return int(g.Float() * float64(n))
}

// shuffle permutes items in place with a seeded Fisher-Yates pass.
func shuffle[T any](items []T, seed int64) {
	g := newLCG(seed)
	for i := len(items) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
