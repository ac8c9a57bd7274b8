package model

import "github.com/tutorly-app/scheduler/internal/schedule"

type ParticipantStatus string

const (
	ParticipantStatusActive    ParticipantStatus = "active"
	ParticipantStatusInactive  ParticipantStatus = "inactive"
	ParticipantStatusSuspended ParticipantStatus = "suspended"
	ParticipantStatusBlocked   ParticipantStatus = "blocked"
)

// Participant is a tutor or student as seen by the booking engine: a
// read-only identity and status. Creation and profile data are owned by
// the directory tables, not by this service.
type Participant struct {
	ID     int64             `json:"id"`
	Role   schedule.Role     `json:"role"`
	Status ParticipantStatus `json:"status"`
}

// Key returns the participant's calendar key.
func (p *Participant) Key() schedule.ParticipantKey {
	return schedule.ParticipantKey{Role: p.Role, ID: p.ID}
}

// IsActive reports whether the participant is eligible for new bookings.
// Existing bookings of a non-active participant stay valid.
func (p *Participant) IsActive() bool {
	return p.Status == ParticipantStatusActive
}
