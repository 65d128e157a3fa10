package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/middleware"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/personality"
	"github.com/stemsi/typequiz-backend/internal/response"
	"github.com/stemsi/typequiz-backend/internal/service"
	"github.com/stemsi/typequiz-backend/internal/validator"
)

// QuizHandler serves question sets and scores submissions.
type QuizHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/v1/quiz/questions?mode=fast|comprehensive
// Returns the current rotation window's questions. Cacheable until the
// window ends.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	var q model.QuizPaperQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidMode, fields)
		return
	}

	mode, err := personality.ParseMode(q.Mode)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidMode)
		return
	}

	paper, remaining, err := h.quizService.CurrentPaper(mode)
	if err != nil {
		h.log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to select questions")
		if errors.Is(err, personality.ErrInsufficientCorpus) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInsufficientCorpus)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	middleware.SetMaxAge(c, remaining)
	response.Success(c, http.StatusOK, paper)
}

// Submit godoc
// POST /api/v1/quiz/submit
// Scores the answers and stores the result for sharing.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.quizService.Submit(c.Request.Context(), req.ToAnswers(), req.Mode)
	if err != nil {
		switch {
		case errors.Is(err, personality.ErrNoValidAnswers):
			response.Fail(c, http.StatusBadRequest, response.ErrNoValidAnswers)
		case errors.Is(err, personality.ErrUnknownMode):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidMode)
		default:
			h.log.Error().Err(err).Msg("Failed to score submission")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, resp)
}
