package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicetasks/internal/calendar"
	"voicetasks/internal/model"
	"voicetasks/internal/pipeline"
	"voicetasks/internal/utils"
)

// respondError maps pipeline errors onto HTTP statuses with a user-facing message.
func respondError(c *gin.Context, err error) {
	utils.Error(c, statusFor(err), pipeline.UserMessage(err))
}

func statusFor(err error) int {
	if _, ok := model.AsServiceError(err); ok {
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, model.ErrUnsupportedLanguage),
		errors.Is(err, model.ErrEmptyInput),
		errors.Is(err, pipeline.ErrChunksUnsupported),
		errors.Is(err, calendar.ErrInvalidDueDate):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, model.ErrSessionActive),
		errors.Is(err, model.ErrBusy),
		errors.Is(err, model.ErrNoActiveSession),
		errors.Is(err, model.ErrNoWritableCalendar):
		return http.StatusConflict
	case errors.Is(err, model.ErrClipTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrEmptyCapture),
		errors.Is(err, model.ErrEmptyResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrDeviceUnavailable),
		errors.Is(err, model.ErrAuthenticationMissing):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
