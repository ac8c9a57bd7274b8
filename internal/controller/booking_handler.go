package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
	"github.com/tutorly-app/scheduler/internal/service"
)

// Lock contention is transient, so the handler retries it with a small
// bounded backoff before surfacing 503 to the caller.
const (
	contentionRetries = 3
	contentionBackoff = 50 * time.Millisecond
)

type BookingHandler struct {
	bookings     *service.BookingService
	availability *service.AvailabilityService
	logger       *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, availability *service.AvailabilityService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, availability: availability, logger: logger}
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tr, err := schedule.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var booking *model.Booking
	err = withContentionRetry(c.Request.Context(), func(ctx context.Context) error {
		var err error
		booking, err = h.bookings.Create(ctx, req.TutorID, req.StudentID, req.CreatorID, req.CreatorRole, tr, req.Description)
		return err
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Confirm handles POST /api/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.bookings.Confirm(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Reschedule handles PUT /api/bookings/:id/schedule.
func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tr, err := schedule.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var booking *model.Booking
	err = withContentionRetry(c.Request.Context(), func(ctx context.Context) error {
		var err error
		booking, err = h.bookings.Reschedule(ctx, id, tr)
		return err
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// List handles GET /api/bookings?role=&id=&from=&to=.
func (h *BookingHandler) List(c *gin.Context) {
	q, ok := bindCalendarQuery(c)
	if !ok {
		return
	}

	window, err := schedule.NewTimeRange(q.From, q.To)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	bookings, err := h.bookings.ListByParticipant(c.Request.Context(), schedule.ParticipantKey{Role: q.Role, ID: q.ID}, window)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// FreeSlots handles GET /api/availability?role=&id=&from=&to=.
func (h *BookingHandler) FreeSlots(c *gin.Context) {
	q, ok := bindCalendarQuery(c)
	if !ok {
		return
	}

	window, err := schedule.NewTimeRange(q.From, q.To)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	slots, err := h.availability.FreeSlots(c.Request.Context(), schedule.ParticipantKey{Role: q.Role, ID: q.ID}, window)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	collected := []schedule.TimeRange{}
	for slot := range slots {
		collected = append(collected, slot)
	}

	c.JSON(http.StatusOK, gin.H{"free_slots": collected})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindCalendarQuery(c *gin.Context) (calendarQuery, bool) {
	var q calendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return q, false
	}
	if !q.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be tutor or student"})
		return q, false
	}
	return q, true
}

func withContentionRetry(ctx context.Context, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(contentionRetries, retry.NewConstant(contentionBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if errors.Is(err, schedule.ErrContended) {
			return retry.RetryableError(err)
		}
		return err
	})
}
