package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/handler"
	"github.com/stemsi/typequiz-backend/internal/middleware"
	"github.com/stemsi/typequiz-backend/internal/response"
	"github.com/stemsi/typequiz-backend/internal/service"
)

const metricsPath = "/metrics"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Quiz    *handler.QuizHandler
	Result  *handler.ResultHandler
	Stats   *handler.StatsHandler
	StatsWS *handler.StatsWSHandler
	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background helpers such as the rate limiter sweeper.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.GinMode != gin.ReleaseMode {
		router.Use(gin.Logger())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// promhttp negotiates its own compression.
	brotliCfg := middleware.DefaultBrotliConfig
	brotliCfg.SkipPaths = []string{metricsPath}
	router.Use(middleware.BrotliWithConfig(brotliCfg))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	if handlers.Metrics != nil {
		router.GET(metricsPath, gin.WrapH(handlers.Metrics))
	}

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/stats", middleware.CacheControl(5), handlers.Stats.GetPublicStats)
	}

	submitLimiter := middleware.NewRateLimiter(ctx, cfg.SubmitRatePerMin, time.Minute)

	// ─── 1. Quiz Group (Public, Submit Rate Limited) ───────────────────
	quizAPI := router.Group("/api/v1/quiz")
	{
		quizAPI.GET("/questions", handlers.Quiz.GetQuestions)
		quizAPI.POST("/submit", submitLimiter.Middleware(), middleware.NoStore(), handlers.Quiz.Submit)
	}

	// ─── 2. Results Group (Public, Share Links) ────────────────────────
	resultsAPI := router.Group("/api/v1/results")
	resultsAPI.Use(middleware.NoStore())
	{
		resultsAPI.GET("/:id", handlers.Result.GetByID)
	}

	// ─── 3. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware(), middleware.NoStore())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 4. WebSocket Group (Public) ───────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/stats/stream", handlers.StatsWS.StatsStream)
	}

	// ─── 5. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		adminAPI.GET("/stats", handlers.Stats.GetAdminStats)
	}

	return router
}
