package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/response"
	"github.com/stemsi/typequiz-backend/internal/service"
)

// StatsHandler exposes the counters.
type StatsHandler struct {
	statsService *service.StatsService
	log          zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		log:          log.With().Str("component", "stats_handler").Logger(),
	}
}

// GetPublicStats godoc
// GET /api/v1/public/stats
func (h *StatsHandler) GetPublicStats(c *gin.Context) {
	stats, err := h.statsService.TestsTaken(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read counter")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetAdminStats godoc
// GET /api/v1/admin/stats
// Returns live counters, per-type totals and the archived daily distribution.
func (h *StatsHandler) GetAdminStats(c *gin.Context) {
	stats, err := h.statsService.AdminStats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read admin stats")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
