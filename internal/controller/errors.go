package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/schedule"
	"github.com/tutorly-app/scheduler/internal/service"
)

// writeError maps domain errors onto HTTP statuses: 409 for conflicts
// (with the colliding entries in the body), 404 for unknown records and
// participants, 422 for invalid ranges and transitions, 503 when lock
// contention outlasted the retries.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		conflictErr   *schedule.ConflictError
		rangeErr      *schedule.InvalidRangeError
		unknownErr    *service.UnknownParticipantError
		inactiveErr   *service.InactiveParticipantError
		transitionErr *service.InvalidTransitionError
	)

	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflictErr.Error(),
			"key":       conflictErr.Key,
			"conflicts": conflictErr.Conflicts,
		})
	case errors.As(err, &unknownErr):
		c.JSON(http.StatusNotFound, gin.H{"error": unknownErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rangeErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": transitionErr.Error()})
	case errors.As(err, &inactiveErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": inactiveErr.Error()})
	case errors.Is(err, schedule.ErrContended):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar is busy, retry shortly"})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
