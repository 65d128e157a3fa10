package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPurgeInterval is how often expired results are swept.
const DefaultPurgeInterval = 10 * time.Minute

// Purger removes expired results.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PurgeWorker periodically sweeps a store that does not expire entries on
// its own, such as the filesystem store.
type PurgeWorker struct {
	store    Purger
	interval time.Duration
	log      zerolog.Logger
}

// NewPurgeWorker creates a new PurgeWorker.
func NewPurgeWorker(store Purger, interval time.Duration, log zerolog.Logger) *PurgeWorker {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return &PurgeWorker{
		store:    store,
		interval: interval,
		log:      log.With().Str("component", "purge_worker").Logger(),
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (w *PurgeWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("PurgeWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *PurgeWorker) sweep(ctx context.Context) {
	removed, err := w.store.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Purge failed")
		}
		return
	}
	if removed > 0 {
		w.log.Info().Int("removed", removed).Msg("Purged expired results")
	}
}
