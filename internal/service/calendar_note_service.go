package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// CalendarNoteService manages tutor calendar blocks. A note occupies every
// listed tutor's calendar exactly like a booking does, so creating one
// conflict-checks against existing bookings and notes, and deleting one
// frees the time.
type CalendarNoteService struct {
	notes     NoteStore
	directory ParticipantDirectory
	index     *schedule.ConflictIndex
	locks     *schedule.KeyLocks
	logger    *zap.Logger
	now       func() time.Time
}

func NewCalendarNoteService(
	notes NoteStore,
	directory ParticipantDirectory,
	index *schedule.ConflictIndex,
	locks *schedule.KeyLocks,
	logger *zap.Logger,
) *CalendarNoteService {
	return &CalendarNoteService{
		notes:     notes,
		directory: directory,
		index:     index,
		locks:     locks,
		logger:    logger,
		now:       time.Now,
	}
}

// Create blocks the range on every listed tutor's calendar. The creator
// must be an active tutor; duplicate tutor ids are collapsed.
func (s *CalendarNoteService) Create(ctx context.Context, creatorID int64, tutorIDs []int64, tr schedule.TimeRange, description string) (*model.CalendarNote, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if len(tutorIDs) == 0 {
		return nil, fmt.Errorf("calendar note needs at least one tutor")
	}

	if err := s.requireActiveTutor(ctx, creatorID); err != nil {
		return nil, err
	}

	ids := dedupIDs(tutorIDs)
	keys := make([]schedule.ParticipantKey, len(ids))
	for i, id := range ids {
		if err := s.requireActiveTutor(ctx, id); err != nil {
			return nil, err
		}
		keys[i] = schedule.TutorKey(id)
	}

	release, err := s.locks.Acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, key := range keys {
		if conflicts := s.index.Overlapping(key, tr); len(conflicts) > 0 {
			return nil, &schedule.ConflictError{Key: key, Conflicts: conflicts}
		}
	}

	note := &model.CalendarNote{
		Description: description,
		Range:       tr,
		CreatorID:   creatorID,
		TutorIDs:    ids,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create calendar note: %w", err)
	}

	for _, key := range keys {
		if err := s.index.Insert(key, note.Ref(), tr); err != nil {
			s.logger.DPanic("Conflict index insert failed", zap.Error(err), zap.String("key", key.String()))
		}
	}

	s.logger.Info("Calendar note created",
		zap.Int64("note_id", note.ID),
		zap.Int64("creator_id", creatorID),
		zap.Int64s("tutor_ids", ids),
		zap.Time("start", tr.Start),
		zap.Time("end", tr.End),
	)

	return note, nil
}

// Get returns one note.
func (s *CalendarNoteService) Get(ctx context.Context, id int64) (*model.CalendarNote, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get calendar note: %w", err)
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

// Delete removes the note and frees the time on every tutor's calendar.
func (s *CalendarNoteService) Delete(ctx context.Context, id int64) error {
	note, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	keys := note.TutorKeys()
	release, err := s.locks.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete calendar note: %w", err)
	}

	for _, key := range keys {
		if err := s.index.Remove(key, note.Ref()); err != nil {
			s.logger.DPanic("Conflict index remove failed", zap.Error(err), zap.String("key", key.String()))
		}
	}

	s.logger.Info("Calendar note deleted", zap.Int64("note_id", id))

	return nil
}

func (s *CalendarNoteService) requireActiveTutor(ctx context.Context, id int64) error {
	key := schedule.TutorKey(id)
	p, err := s.directory.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("look up %s: %w", key, err)
	}
	if p == nil {
		return &UnknownParticipantError{Key: key}
	}
	if !p.IsActive() {
		return &InactiveParticipantError{Key: key, Status: p.Status}
	}
	return nil
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
