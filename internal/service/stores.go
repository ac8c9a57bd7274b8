package service

import (
	"context"
	"time"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// BookingStore is the durable store for booking records. The repository
// layer implements it against PostgreSQL; tests use an in-memory version.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error
	UpdateTimeRange(ctx context.Context, id int64, tr schedule.TimeRange) error
	GetActive(ctx context.Context) ([]*model.Booking, error)
	GetByParticipant(ctx context.Context, key schedule.ParticipantKey, from, to time.Time) ([]*model.Booking, error)
}

// NoteStore is the durable store for calendar notes.
type NoteStore interface {
	Create(ctx context.Context, note *model.CalendarNote) error
	GetByID(ctx context.Context, id int64) (*model.CalendarNote, error)
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]*model.CalendarNote, error)
}

// ParticipantDirectory resolves participant existence and status. It is
// read-only from the engine's point of view.
type ParticipantDirectory interface {
	Get(ctx context.Context, key schedule.ParticipantKey) (*model.Participant, error)
}
