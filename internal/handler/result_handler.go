package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/response"
	"github.com/stemsi/typequiz-backend/internal/service"
)

// ResultHandler serves shared results.
type ResultHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(quizService *service.QuizService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		quizService: quizService,
		log:         log.With().Str("component", "result_handler").Logger(),
	}
}

// GetByID godoc
// GET /api/v1/results/:id
func (h *ResultHandler) GetByID(c *gin.Context) {
	result, err := h.quizService.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResult):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		case errors.Is(err, service.ErrResultNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
		default:
			h.log.Error().Err(err).Msg("Failed to load result")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}
