package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/metrics"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/personality"
	"github.com/stemsi/typequiz-backend/internal/store"
)

// Domain Errors
var (
	ErrResultNotFound = errors.New("result not found")
	ErrInvalidResult  = errors.New("invalid result id")
)

// ResultQueue hands scored results to the archive worker.
type ResultQueue interface {
	Push(ctx context.Context, r *model.StoredResult) error
}

// QuizOptions tunes a QuizService.
type QuizOptions struct {
	Rotation  personality.Granularity
	CacheSize int
	ResultTTL time.Duration
}

type selectionKey struct {
	mode personality.Mode
	seed int64
}

// QuizService serves rotating question sets and scores submissions.
type QuizService struct {
	corpus  *personality.Corpus
	opts    QuizOptions
	cache   *lru.Cache[selectionKey, []personality.Descriptor]
	results store.ResultStore
	counter store.Counter
	queue   ResultQueue
	metrics *metrics.Metrics
	now     func() time.Time
	log     zerolog.Logger
}

// NewQuizService creates a new QuizService. queue may be nil when the
// archive is disabled.
func NewQuizService(
	corpus *personality.Corpus,
	opts QuizOptions,
	results store.ResultStore,
	counter store.Counter,
	queue ResultQueue,
	m *metrics.Metrics,
	log zerolog.Logger,
) (*QuizService, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.Rotation == "" {
		opts.Rotation = personality.GranularityMinute
	}
	cache, err := lru.New[selectionKey, []personality.Descriptor](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create selection cache: %w", err)
	}

	return &QuizService{
		corpus:  corpus,
		opts:    opts,
		cache:   cache,
		results: results,
		counter: counter,
		queue:   queue,
		metrics: m,
		now:     time.Now,
		log:     log.With().Str("component", "quiz_service").Logger(),
	}, nil
}

// Rotation returns the configured selection window granularity.
func (s *QuizService) Rotation() personality.Granularity {
	return s.opts.Rotation
}

// Paper returns the question set for mode in the window containing at,
// and how long that window has left.
func (s *QuizService) Paper(mode personality.Mode, at time.Time) (*model.QuizPaper, time.Duration, error) {
	seed := personality.WindowSeed(at, s.opts.Rotation)
	questions, err := s.selection(mode, seed)
	if err != nil {
		return nil, 0, err
	}

	return &model.QuizPaper{
		Mode:      mode,
		Rotation:  s.opts.Rotation,
		Window:    seed,
		Total:     len(questions),
		Questions: questions,
	}, personality.WindowRemaining(at, s.opts.Rotation), nil
}

// CurrentPaper is Paper for the current time.
func (s *QuizService) CurrentPaper(mode personality.Mode) (*model.QuizPaper, time.Duration, error) {
	return s.Paper(mode, s.now())
}

// selection returns a cached selection or computes it. Callers must not
// modify the returned slice.
func (s *QuizService) selection(mode personality.Mode, seed int64) ([]personality.Descriptor, error) {
	key := selectionKey{mode: mode, seed: seed}
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.ObserveSelectionCache(true)
		return cached, nil
	}
	s.metrics.ObserveSelectionCache(false)

	questions, err := personality.Select(s.corpus, mode.PerDichotomy(), seed)
	if err != nil {
		return nil, fmt.Errorf("select %s questions: %w", mode, err)
	}
	s.cache.Add(key, questions)
	return questions, nil
}

// Submit scores answers and, on success, stores the result, bumps the
// counters and queues it for archiving. Storage failures are logged and
// do not fail the submission; the returned ID is then empty.
// mode is optional and fixes the expected answer count when set.
func (s *QuizService) Submit(ctx context.Context, answers []personality.Answer, mode string) (*model.SubmitResponse, error) {
	var opts personality.ScoreOptions
	if mode != "" {
		m, err := personality.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		opts.ExpectedCount = m.Total()
	}

	result, err := personality.ScoreWithOptions(s.corpus, answers, opts)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeRejected, "")
		return nil, err
	}

	outcome := metrics.OutcomeScored
	if result.IsNeutral() {
		outcome = metrics.OutcomeNeutral
	}
	s.metrics.ObserveSubmission(outcome, result.Type)

	taken := personality.ModeFast
	if result.Expected == personality.ModeComprehensive.Total() {
		taken = personality.ModeComprehensive
	}

	now := s.now().UTC()
	stored := &model.StoredResult{
		ID:        uuid.New().String(),
		Mode:      string(taken),
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.ResultTTL),
	}

	resp := &model.SubmitResponse{Result: result}
	if err := s.results.Save(ctx, stored, s.opts.ResultTTL); err != nil {
		s.metrics.IncStoreError("save")
		s.log.Error().Err(err).Str("type", result.Type).Msg("Failed to store result")
	} else {
		resp.ID = stored.ID
		resp.ExpiresAt = &stored.ExpiresAt
	}

	if _, err := s.counter.Increment(ctx, result.Type); err != nil {
		s.metrics.IncStoreError("increment")
		s.log.Error().Err(err).Msg("Failed to increment counters")
	}

	if s.queue != nil && resp.ID != "" {
		if err := s.queue.Push(ctx, stored); err != nil {
			s.metrics.IncStoreError("enqueue")
			s.log.Error().Err(err).Str("result_id", stored.ID).Msg("Failed to queue result for archive")
		}
	}

	return resp, nil
}

// GetResult loads a shared result by id.
func (s *QuizService) GetResult(ctx context.Context, id string) (*model.StoredResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidResult
	}

	r, err := s.results.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		s.metrics.IncStoreError("get")
		return nil, fmt.Errorf("get result: %w", err)
	}
	return r, nil
}
