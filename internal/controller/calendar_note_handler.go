package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
	"github.com/tutorly-app/scheduler/internal/service"
)

type CalendarNoteHandler struct {
	notes  *service.CalendarNoteService
	logger *zap.Logger
}

func NewCalendarNoteHandler(notes *service.CalendarNoteService, logger *zap.Logger) *CalendarNoteHandler {
	return &CalendarNoteHandler{notes: notes, logger: logger}
}

// Create handles POST /api/calendar-notes.
func (h *CalendarNoteHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tr, err := schedule.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var note *model.CalendarNote
	err = withContentionRetry(c.Request.Context(), func(ctx context.Context) error {
		var err error
		note, err = h.notes.Create(ctx, req.CreatorID, req.TutorIDs, tr, req.Description)
		return err
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// Get handles GET /api/calendar-notes/:id.
func (h *CalendarNoteHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	note, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /api/calendar-notes/:id.
func (h *CalendarNoteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := withContentionRetry(c.Request.Context(), func(ctx context.Context) error {
		return h.notes.Delete(ctx, id)
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
