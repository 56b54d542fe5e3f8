package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
	"github.com/edustack/communityhub/internal/pkg/logger"
)

// HandleAPIError translates application errors into standardized JSON
// responses. Messages attached through apperrors constructors are preserved;
// anything unrecognized becomes a 500 without leaking internals.
func HandleAPIError(c *gin.Context, err error) {
	message := ""
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		message = customErr.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, message, "Resource not found")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, message, "Permission denied")
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, dto.ErrorCodeConflict, message, "Conflict")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respondError(c, http.StatusUnprocessableEntity, dto.ErrorCodeValidationFailed, message, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message, "Bad request")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, message, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, message, "Invalid token")
	case errors.Is(err, apperrors.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, message, "Authentication required")
	case errors.Is(err, apperrors.ErrStorageFailure):
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeStorageFailure, message, "Storage failure")
	default:
		logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Unhandled API error")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "", "Internal server error")
	}
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message, fallback string) {
	if message == "" {
		message = fallback
	}
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
