package model

import (
	"time"

	"github.com/tutorly-app/scheduler/internal/schedule"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // awaiting confirmation
	BookingStatusConfirmed BookingStatus = "confirmed" // confirmed by staff
	BookingStatusCompleted BookingStatus = "completed" // derived: confirmed and past its end, never stored
	BookingStatusCanceled  BookingStatus = "canceled"  // canceled, terminal
)

// Booking is a time-bound engagement between one tutor and one student.
// The creator may differ from both: staff can book on behalf of others,
// and the creator id tracks accountability for that.
type Booking struct {
	ID          int64              `json:"id"`
	TutorID     int64              `json:"tutor_id"`
	StudentID   int64              `json:"student_id"`
	CreatorID   int64              `json:"creator_id"`
	CreatorRole schedule.Role      `json:"creator_role"`
	Range       schedule.TimeRange `json:"time_range"`
	Status      BookingStatus      `json:"status"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Ref returns the booking's conflict-index reference.
func (b *Booking) Ref() schedule.Ref {
	return schedule.BookingRef(b.ID)
}

// TutorKey returns the tutor's calendar key.
func (b *Booking) TutorKey() schedule.ParticipantKey {
	return schedule.TutorKey(b.TutorID)
}

// StudentKey returns the student's calendar key.
func (b *Booking) StudentKey() schedule.ParticipantKey {
	return schedule.StudentKey(b.StudentID)
}

// IsActive reports whether the booking occupies calendar time. Only
// cancellation frees the slot; a completed booking's time is in the past
// and no longer contends with anything.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// EffectiveStatus derives the read-time status: a confirmed booking whose
// range has fully elapsed reads as completed without requiring a write.
// Pending and canceled bookings are reported as stored.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == BookingStatusConfirmed && !now.Before(b.Range.End) {
		return BookingStatusCompleted
	}
	return b.Status
}
