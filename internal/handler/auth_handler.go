package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/model"
	"github.com/stemsi/typequiz-backend/internal/response"
	"github.com/stemsi/typequiz-backend/internal/service"
	"github.com/stemsi/typequiz-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates the admin password and returns a JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, expires, err := h.authService.AdminLogin(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminDisabled):
			response.Fail(c, http.StatusForbidden, response.ErrAdminDisabled)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.log.Warn().Str("ip", c.ClientIP()).Msg("Rejected admin login")
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		default:
			h.log.Error().Err(err).Msg("Failed to issue admin token")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires.UTC(),
	})
}
