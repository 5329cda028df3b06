package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/alumlink/internal/app/models/dto"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// HandleAPIError maps application errors onto HTTP responses. Controllers
// funnel every service error through here so the status mapping lives in one
// place.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrMentorNotFound,
		apperrors.ErrStudentNotFound,
		apperrors.ErrAssignmentNotFound,
		apperrors.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: notFoundDetail(err),
		})

	case apperrors.Is(err, apperrors.ErrAlreadyAssigned, apperrors.ErrConflict, apperrors.ErrResourceAlreadyExists):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeConflict, errorMessage(err, "Conflicting state")),
		})

	case errors.Is(err, apperrors.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeConflict, "Mentor has no free mentee slots"),
		})

	case apperrors.Is(err, apperrors.ErrInvalidChannel,
		apperrors.ErrNoMentor,
		apperrors.ErrEmptyMessage,
		apperrors.ErrNoRecipients,
		apperrors.ErrBadRequest,
		apperrors.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, errorMessage(err, "Invalid request")),
		})

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, errorMessage(err, "Permission denied")),
		})

	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"),
		})

	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrInvalidFormat):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"),
		})

	case errors.Is(err, apperrors.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "A dependent service failed"),
		})

	default:
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}

// notFoundDetail picks a specific not-found message for known entity errors
func notFoundDetail(err error) *dto.ErrorDetail {
	switch {
	case errors.Is(err, apperrors.ErrMentorNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Mentor not found")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrAssignmentNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Assignment not found")
	case errors.Is(err, apperrors.ErrMessageNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Message not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "User not found")
	default:
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	}
}

// errorMessage prefers a CustomError's message, falling back to a default
func errorMessage(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}
