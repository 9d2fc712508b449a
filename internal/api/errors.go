package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/baike-api/internal/api/shared"
	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/generation"
	"github.com/phrazzld/baike-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrEmptyStructure):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway

	case errors.Is(err, generation.ErrNotConfigured):
		return http.StatusServiceUnavailable

	// before ErrAnnotator, which it wraps
	case errors.Is(err, domain.ErrAnnotatorTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, domain.ErrAnnotator):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verr  *domain.ValidationError
		verrs validator.ValidationErrors
		nerr  *domain.NetworkError
	)

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.As(err, &verr):
		if verr.Field == "" {
			return "Invalid request: " + verr.Message
		}
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request body"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, domain.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, domain.ErrEmptyStructure):
		return "The document contains no extractable content"

	case errors.As(err, &nerr) && nerr.StatusCode != 0:
		return fmt.Sprintf("Could not fetch URL: HTTP status %d", nerr.StatusCode)
	case errors.Is(err, domain.ErrNetwork):
		return "Could not fetch URL"

	case errors.Is(err, generation.ErrNotConfigured):
		return "Language model is not configured"
	case errors.Is(err, domain.ErrAnnotatorTimeout):
		return "Language model did not respond in time"
	case errors.Is(err, domain.ErrAnnotator):
		return "Language model request failed"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError reduces validator output to the first failing
// field and a readable reason.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	field := fe.Field()
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url", "http_url":
		return "invalid URL"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
