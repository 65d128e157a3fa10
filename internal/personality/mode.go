package personality

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how many questions a quiz presents.
type Mode string

const (
	ModeFast          Mode = "fast"
	ModeComprehensive Mode = "comprehensive"
)

const (
	fastPerDichotomy          = 11
	comprehensivePerDichotomy = 22
)

// ParseMode accepts "fast" or "comprehensive" (case-insensitive).
// An empty string means fast.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFast:
		return ModeFast, nil
	case ModeComprehensive:
		return ModeComprehensive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// PerDichotomy returns the number of questions drawn for every axis.
func (m Mode) PerDichotomy() int {
	if m == ModeComprehensive {
		return comprehensivePerDichotomy
	}
	return fastPerDichotomy
}

// Total returns the number of questions presented in this mode.
func (m Mode) Total() int {
	return m.PerDichotomy() * len(Dichotomies)
}

// Granularity is the rotation window for question selection.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityDay    Granularity = "day"
)

// ParseGranularity accepts "minute" or "day" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityMinute:
		return GranularityMinute, nil
	case GranularityDay:
		return GranularityDay, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// WindowSeed derives the rotation seed for the window containing t.
// Minute windows use minutes since the epoch; day windows use
// year*1000 + day-of-year in UTC so the same calendar day never repeats.
func WindowSeed(t time.Time, g Granularity) int64 {
	if g == GranularityDay {
		u := t.UTC()
		return int64(u.Year())*1000 + int64(u.YearDay())
	}
	return t.Unix() / 60
}

// WindowRemaining returns how long the window containing t stays open.
func WindowRemaining(t time.Time, g Granularity) time.Duration {
	if g == GranularityDay {
		u := t.UTC()
		next := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
		return next.Sub(u)
	}
	return t.Truncate(time.Minute).Add(time.Minute).Sub(t)
}
