package service

import (
	"errors"
	"fmt"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// ErrNotFound is returned when the referenced booking or note does not
// exist.
var ErrNotFound = errors.New("record not found")

// UnknownParticipantError reports a referenced participant id that is not
// in the directory.
type UnknownParticipantError struct {
	Key schedule.ParticipantKey
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("unknown participant %s", e.Key)
}

// InactiveParticipantError reports a participant that exists but is not
// eligible for new bookings.
type InactiveParticipantError struct {
	Key    schedule.ParticipantKey
	Status model.ParticipantStatus
}

func (e *InactiveParticipantError) Error() string {
	return fmt.Sprintf("participant %s is %s, not active", e.Key, e.Status)
}

// InvalidTransitionError reports a state machine violation, e.g.
// confirming an already-canceled booking.
type InvalidTransitionError struct {
	ID   int64
	From model.BookingStatus
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking %d in state %s", e.Op, e.ID, e.From)
}
