package responses

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

// HandleError maps domain sentinels to HTTP status codes.
// Everything else goes through the platform error writer.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()

	switch {
	case errors.Is(err, call.ErrSessionNotFound),
		errors.Is(err, consent.ErrRecordNotFound),
		errors.Is(err, conversation.ErrSessionNotFound):
		platformerrors.WriteNotFound(c, message)
	case errors.Is(err, call.ErrOutcomeAlreadySet),
		errors.Is(err, call.ErrSessionExists),
		errors.Is(err, call.ErrAudioAlreadySet):
		platformerrors.WriteConflict(c, message)
	case errors.Is(err, call.ErrMalformedCallback):
		platformerrors.WriteValidationError(c, message)
	default:
		platformerrors.WriteError(c, err, logger)
	}
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level errors like validation failures.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	detail := &platformerrors.HTTPErrorDetail{
		Message: message,
		Type:    platformerrors.ErrorTypeString(errorType),
	}
	if id, ok := c.Get("request_id"); ok {
		if requestID, ok := id.(string); ok {
			detail.RequestID = requestID
		}
	}
	c.JSON(platformerrors.ErrorTypeToHTTPStatus(errorType), platformerrors.HTTPErrorResponse{Error: detail})
}
