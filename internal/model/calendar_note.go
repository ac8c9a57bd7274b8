package model

import (
	"time"

	"github.com/tutorly-app/scheduler/internal/schedule"
)

// CalendarNote is a time block on one or more tutors' calendars: meetings,
// office closures, anything that should keep the slot from being booked.
// Notes never involve students.
type CalendarNote struct {
	ID          int64              `json:"id"`
	Description string             `json:"description,omitempty"`
	Range       schedule.TimeRange `json:"time_range"`
	CreatorID   int64              `json:"creator_id"`
	TutorIDs    []int64            `json:"tutor_ids"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Ref returns the note's conflict-index reference.
func (n *CalendarNote) Ref() schedule.Ref {
	return schedule.NoteRef(n.ID)
}

// TutorKeys returns the calendar keys of every tutor the note blocks.
func (n *CalendarNote) TutorKeys() []schedule.ParticipantKey {
	keys := make([]schedule.ParticipantKey, len(n.TutorIDs))
	for i, id := range n.TutorIDs {
		keys[i] = schedule.TutorKey(id)
	}
	return keys
}
