package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/store"
	"golang.org/x/sync/errgroup"
)

// archiveDays is how much archived history the admin view includes.
const archiveDays = 30

// DistributionReader reads the archived per-day type distribution.
type DistributionReader interface {
	DailyTypeDistribution(ctx context.Context, days int) ([]model.DailyTypeCount, error)
}

// StatsService reads the live counters and, when available, the archive.
type StatsService struct {
	counter store.Counter
	archive DistributionReader
	log     zerolog.Logger
}

// NewStatsService creates a new StatsService. archive may be nil.
func NewStatsService(counter store.Counter, archive DistributionReader, log zerolog.Logger) *StatsService {
	return &StatsService{
		counter: counter,
		archive: archive,
		log:     log.With().Str("component", "stats_service").Logger(),
	}
}

// TestsTaken returns the public tests-taken counter.
func (s *StatsService) TestsTaken(ctx context.Context) (*model.PublicStats, error) {
	total, err := s.counter.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tests taken: %w", err)
	}
	return &model.PublicStats{TestsTaken: total}, nil
}

// AdminStats gathers the counters and the archive concurrently. An archive
// failure is logged and leaves ArchiveDaily empty.
func (s *StatsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.counter.Total(gctx)
		if err != nil {
			return fmt.Errorf("get tests taken: %w", err)
		}
		stats.TestsTaken = total
		return nil
	})
	g.Go(func() error {
		counts, err := s.counter.TypeCounts(gctx)
		if err != nil {
			return fmt.Errorf("get type counts: %w", err)
		}
		stats.TypeCounts = counts
		return nil
	})
	if s.archive != nil {
		g.Go(func() error {
			daily, err := s.archive.DailyTypeDistribution(gctx, archiveDays)
			if err != nil {
				s.log.Warn().Err(err).Msg("Failed to read archive distribution")
				return nil
			}
			stats.ArchiveDaily = daily
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.TypeCounts == nil {
		stats.TypeCounts = map[string]int64{}
	}
	return &stats, nil
}
