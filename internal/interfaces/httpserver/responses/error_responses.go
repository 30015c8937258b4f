package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vidcrunch/vidcrunch/internal/utils/platformerrors"
)

// HandleError maps a domain error onto the wire contract: a structured
// {error: message} payload with the taxonomy's status code. Unexpected
// errors are logged and surfaced as a generic internal failure, never
// swallowed.
func HandleError(c *gin.Context, log zerolog.Logger, err error, fallback string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		platformerrors.LogError(log, platformErr)
		message := platformErr.Message
		if message == "" {
			message = fallback
		}
		c.AbortWithStatusJSON(
			platformerrors.ErrorTypeToHTTPStatus(platformErr.GetErrorType()),
			gin.H{"error": message},
		)
		return
	}

	log.Error().Err(err).Msg(fallback)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
