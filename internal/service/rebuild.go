package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/schedule"
)

// RebuildIndex loads every non-canceled booking and every calendar note
// from the store and inserts them into a fresh index. The index is a
// derived structure; this runs once at startup before the server accepts
// traffic.
func RebuildIndex(ctx context.Context, index *schedule.ConflictIndex, bookings BookingStore, notes NoteStore, logger *zap.Logger) error {
	active, err := bookings.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active bookings: %w", err)
	}
	for _, b := range active {
		if err := index.Insert(b.TutorKey(), b.Ref(), b.Range); err != nil {
			return fmt.Errorf("index booking %d for tutor: %w", b.ID, err)
		}
		if err := index.Insert(b.StudentKey(), b.Ref(), b.Range); err != nil {
			return fmt.Errorf("index booking %d for student: %w", b.ID, err)
		}
	}

	all, err := notes.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load calendar notes: %w", err)
	}
	for _, n := range all {
		for _, key := range n.TutorKeys() {
			if err := index.Insert(key, n.Ref(), n.Range); err != nil {
				return fmt.Errorf("index note %d: %w", n.ID, err)
			}
		}
	}

	logger.Info("Conflict index rebuilt",
		zap.Int("bookings", len(active)),
		zap.Int("notes", len(all)),
	)

	return nil
}
