package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/delivery/http/middleware"
	"github.com/Harsh-BH/csvflag/internal/domain"
)

// statusFor maps an error kind to its HTTP status. Every kind is listed.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindNotFound:
		return http.StatusBadRequest
	case domain.KindNotReady:
		return http.StatusLocked
	case domain.KindProcessingFailed:
		return http.StatusUnprocessableEntity
	case domain.KindSchedulingFailure:
		return http.StatusServiceUnavailable
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": msg}. Internal failures are logged and
// their detail is withheld from the client.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	if kind == domain.KindInternal {
		logger.Error(op+" failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
