package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/metrics"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/repository"
)

const (
	ArchiveBatchSize    = 50
	ArchiveBatchTimeout = 2 * time.Second
	ArchivePollTimeout  = 1 * time.Second
)

// Archiver writes archive rows.
type Archiver interface {
	BulkInsert(ctx context.Context, rows []*model.ArchivedResult) error
	Insert(ctx context.Context, row *model.ArchivedResult) error
}

// ArchiveWorker drains the persistence queue into PostgreSQL in batches.
type ArchiveWorker struct {
	repo    Archiver
	rdb     *redis.Client
	metrics *metrics.Metrics
	log     zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

// NewArchiveWorker creates a new ArchiveWorker.
func NewArchiveWorker(repo Archiver, rdb *redis.Client, m *metrics.Metrics, log zerolog.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		repo:         repo,
		rdb:          rdb,
		metrics:      m,
		log:          log.With().Str("component", "archive_worker").Logger(),
		batchSize:    ArchiveBatchSize,
		batchTimeout: ArchiveBatchTimeout,
		pollTimeout:  ArchivePollTimeout,
	}
}

// queued pairs a decoded row with its raw payload for requeueing.
type queued struct {
	row *model.ArchivedResult
	raw string
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ArchiveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ArchiveWorker started")

	batch := make([]queued, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				// Redis is unreachable; wait a poll interval instead of spinning.
				w.log.Error().Err(err).Msg("BLPop error")
				select {
				case <-ctx.Done():
				case <-time.After(w.pollTimeout):
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var r model.StoredResult
			if err := json.Unmarshal([]byte(item[1]), &r); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}
			row, err := repository.ToArchived(&r)
			if err != nil {
				w.log.Error().Err(err).Str("result_id", r.ID).Msg("Dropping unarchivable result")
				continue
			}

			batch = append(batch, queued{row: row, raw: item[1]})
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *ArchiveWorker) flushSafe(ctx context.Context, batch []queued) {
	if len(batch) == 0 {
		return
	}

	rows := make([]*model.ArchivedResult, len(batch))
	for i, q := range batch {
		rows[i] = q.row
	}

	err := w.repo.BulkInsert(ctx, rows)
	if err == nil {
		w.metrics.AddArchived(len(rows))
		return
	}
	w.log.Warn().Err(err).Int("size", len(rows)).Msg("bulk archive insert failed, using fallback")

	archived := 0
	for _, q := range batch {
		if err := w.repo.Insert(ctx, q.row); err != nil {
			w.log.Error().Err(err).Str("result_id", q.row.ID).Msg("single insert failed, requeueing")
			w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, q.raw)
			continue
		}
		archived++
	}
	w.metrics.AddArchived(archived)
}
