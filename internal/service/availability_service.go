package service

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/schedule"
)

// AvailabilityService is the read path: free-slot queries over the
// conflict index. It never mutates anything and runs fully concurrently
// with bookings on other participants.
type AvailabilityService struct {
	directory ParticipantDirectory
	index     *schedule.ConflictIndex
	logger    *zap.Logger
}

func NewAvailabilityService(directory ParticipantDirectory, index *schedule.ConflictIndex, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{directory: directory, index: index, logger: logger}
}

// FreeSlots returns the participant's free sub-intervals within the
// window, in order. Pending bookings count as occupied: a slot reserved
// but not yet confirmed is not offered to anyone else. The sequence is a
// pure computation over a snapshot of the index and can be re-iterated.
func (s *AvailabilityService) FreeSlots(ctx context.Context, key schedule.ParticipantKey, window schedule.TimeRange) (iter.Seq[schedule.TimeRange], error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	p, err := s.directory.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &UnknownParticipantError{Key: key}
	}

	busy := s.index.BusyWithin(key, window)
	return schedule.FreeSlots(window, busy), nil
}
