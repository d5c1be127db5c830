package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/http/dto"
	"basegraph.app/scout/internal/http/middleware"
	"basegraph.app/scout/internal/retrieval"
)

func statusFor(kind retrieval.ErrorKind) int {
	switch kind {
	case retrieval.KindInvalidReference:
		return http.StatusBadRequest
	case retrieval.KindRepositoryNotFound, retrieval.KindPathNotFound:
		return http.StatusNotFound
	case retrieval.KindNoDefaultBranch:
		return http.StatusUnprocessableEntity
	case retrieval.KindRateLimited:
		return http.StatusTooManyRequests
	case retrieval.KindTransportFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeRetrievalError renders a failed retrieval. Retrieval errors carry a
// message safe to show the caller; anything else is logged and hidden.
func writeRetrievalError(c *gin.Context, err error, retryAfter time.Duration, requestID string) {
	_ = c.Error(err)
	if requestID == "" {
		requestID = middleware.RequestID(c)
	}

	var rerr *retrieval.Error
	if !errors.As(err, &rerr) {
		slog.ErrorContext(c.Request.Context(), "retrieval request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "internal server error",
			RequestID: requestID,
		})
		return
	}

	if rerr.Kind == retrieval.KindRateLimited && retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
	c.JSON(statusFor(rerr.Kind), dto.ErrorResponse{
		Error:     rerr.Error(),
		Kind:      string(rerr.Kind),
		Path:      rerr.Path,
		RequestID: requestID,
	})
}

// requestIDFor prefers the id named in the request body over the one the
// logging middleware assigned.
func requestIDFor(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return middleware.RequestID(c)
}
