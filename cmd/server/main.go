package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/database"
	"github.com/stemsi/typequiz-backend/internal/handler"
	"github.com/stemsi/typequiz-backend/internal/logger"
	"github.com/stemsi/typequiz-backend/internal/metrics"
	"github.com/stemsi/typequiz-backend/internal/personality"
	"github.com/stemsi/typequiz-backend/internal/repository"
	"github.com/stemsi/typequiz-backend/internal/router"
	"github.com/stemsi/typequiz-backend/internal/service"
	"github.com/stemsi/typequiz-backend/internal/store"
	"github.com/stemsi/typequiz-backend/internal/validator"
	"github.com/stemsi/typequiz-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("store", cfg.StoreBackend).
		Msg("Starting TypeQuiz Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Bank ────────────────────────────────────────────
	// A bank that cannot fill both modes is a configuration error.
	corpus := loadCorpus(cfg, log)
	rotation, err := personality.ParseGranularity(cfg.QuizRotation)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid QUIZ_ROTATION")
	}
	seed := personality.WindowSeed(time.Now(), rotation)
	if err := personality.CheckCapacity(corpus, seed, personality.ModeFast, personality.ModeComprehensive); err != nil {
		log.Fatal().Err(err).Msg("Question bank cannot serve every quiz mode")
	}
	log.Info().Int("questions", corpus.Size()).Str("rotation", string(rotation)).Msg("Question bank loaded")

	// ─── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	startWorker := func(run func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(workerCtx)
		}()
	}

	// ─── Result Store ──────────────────────────────────────────────────
	var (
		st    store.Store
		queue service.ResultQueue
		rdb   *redis.Client
	)
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		st = store.NewRedisStore(rdb)
	case config.StoreBackendFS:
		fsStore, err := store.NewFSStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open data directory")
		}
		st = fsStore
		startWorker(worker.NewPurgeWorker(fsStore, worker.DefaultPurgeInterval, log).Start)
	default:
		log.Fatal().Str("store", cfg.StoreBackend).Msg("Unknown STORE_BACKEND")
	}

	// ─── Connect to PostgreSQL (archive) ───────────────────────────────
	var archive service.DistributionReader
	if cfg.ArchiveEnabled {
		if rdb == nil {
			log.Fatal().Msg("ARCHIVE_ENABLED requires STORE_BACKEND=redis")
		}
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		resultRepo := repository.NewResultRepository(pool)
		archive = resultRepo
		queue = store.NewRedisQueue(rdb)
		startWorker(worker.NewArchiveWorker(resultRepo, rdb, m, log).Start)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	quizService, err := service.NewQuizService(corpus, service.QuizOptions{
		Rotation:  rotation,
		CacheSize: cfg.SelectionCacheSize,
		ResultTTL: cfg.ResultTTL,
	}, st, st, queue, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create quiz service")
	}
	statsService := service.NewStatsService(st, archive, log)
	authService := service.NewAuthService(cfg)
	if cfg.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH is empty, admin login disabled")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Quiz:    handler.NewQuizHandler(quizService, log),
		Result:  handler.NewResultHandler(quizService, log),
		Stats:   handler.NewStatsHandler(statsService, log),
		StatsWS: handler.NewStatsWSHandler(statsService, log, cfg.AllowedOrigins),
		Metrics: metrics.Handler(reg),
	}

	// ─── Prewarm Selection Cache ──────────────────────────────────────
	for _, mode := range []personality.Mode{personality.ModeFast, personality.ModeComprehensive} {
		if _, _, err := quizService.CurrentPaper(mode); err != nil {
			log.Warn().Err(err).Str("mode", string(mode)).Msg("Selection prewarm failed")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the archive batch to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

func loadCorpus(cfg *config.Config, log zerolog.Logger) *personality.Corpus {
	if cfg.QuestionBankPath == "" {
		corpus, err := personality.DefaultCorpus()
		if err != nil {
			log.Fatal().Err(err).Msg("Built-in question bank is invalid")
		}
		return corpus
	}

	corpus, err := personality.LoadBankFile(cfg.QuestionBankPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.QuestionBankPath).Msg("Failed to load question bank")
	}
	return corpus
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
