package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrContended is returned when a booking operation could not take its
// participant locks within the configured wait. Callers may retry.
var ErrContended = errors.New("schedule: lock wait timed out")

// InvalidRangeError reports a time range that violates start < end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range: start %s is not before end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// ConflictError reports that a candidate range overlaps existing entries
// on one participant's calendar. Conflicts carry the colliding refs and
// their windows so the caller can show the user what collides.
type ConflictError struct {
	Key       ParticipantKey
	Conflicts []Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict for %s: %d overlapping entries", e.Key, len(e.Conflicts))
}
