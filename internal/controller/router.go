package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface. Transport stays thin: handlers bind
// plain data, call the services and map errors to statuses.
func NewRouter(bookings *BookingHandler, notes *CalendarNoteHandler, logger *zap.Logger, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/bookings", bookings.Create)
		api.GET("/bookings", bookings.List)
		api.GET("/bookings/:id", bookings.Get)
		api.POST("/bookings/:id/confirm", bookings.Confirm)
		api.POST("/bookings/:id/cancel", bookings.Cancel)
		api.PUT("/bookings/:id/schedule", bookings.Reschedule)

		api.GET("/availability", bookings.FreeSlots)

		api.POST("/calendar-notes", notes.Create)
		api.GET("/calendar-notes/:id", notes.Get)
		api.DELETE("/calendar-notes/:id", notes.Delete)
	}

	return r
}
