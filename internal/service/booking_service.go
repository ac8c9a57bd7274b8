package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// BookingService owns every mutation of bookings. All writes flow through
// it so the durable store and the conflict index stay consistent: the
// check-then-insert sequence runs under per-participant locks, and index
// updates happen only after the store accepted the write.
type BookingService struct {
	bookings  BookingStore
	directory ParticipantDirectory
	index     *schedule.ConflictIndex
	locks     *schedule.KeyLocks
	logger    *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	bookings BookingStore,
	directory ParticipantDirectory,
	index *schedule.ConflictIndex,
	locks *schedule.KeyLocks,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		directory: directory,
		index:     index,
		locks:     locks,
		logger:    logger,
		now:       time.Now,
	}
}

// Create books a tutor-student session. The range is validated, all three
// participants must exist and be active, and both the tutor's and the
// student's calendars must be free for the whole range. New bookings
// start pending; a pending booking already reserves its slot so two staff
// members cannot race each other into the same window.
func (s *BookingService) Create(
	ctx context.Context,
	tutorID, studentID int64,
	creatorID int64, creatorRole schedule.Role,
	tr schedule.TimeRange,
	description string,
) (*model.Booking, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	tutorKey := schedule.TutorKey(tutorID)
	studentKey := schedule.StudentKey(studentID)

	if err := s.requireActive(ctx, tutorKey); err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, studentKey); err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, schedule.ParticipantKey{Role: creatorRole, ID: creatorID}); err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, tutorKey, studentKey)
	if err != nil {
		return nil, err
	}
	defer release()

	if conflicts := s.index.Overlapping(tutorKey, tr); len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Key: tutorKey, Conflicts: conflicts}
	}
	if conflicts := s.index.Overlapping(studentKey, tr); len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Key: studentKey, Conflicts: conflicts}
	}

	booking := &model.Booking{
		TutorID:     tutorID,
		StudentID:   studentID,
		CreatorID:   creatorID,
		CreatorRole: creatorRole,
		Range:       tr,
		Status:      model.BookingStatusPending,
		Description: description,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.mustIndex(tutorKey, booking.Ref(), tr)
	s.mustIndex(studentKey, booking.Ref(), tr)

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("tutor_id", tutorID),
		zap.Int64("student_id", studentID),
		zap.Int64("creator_id", creatorID),
		zap.Time("start", tr.Start),
		zap.Time("end", tr.End),
	)

	return booking, nil
}

// Confirm moves a pending booking to confirmed. No conflict re-check is
// needed: the booking has occupied its slot since creation.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Status transitions are serialized on the same locks as index
	// mutations, so a concurrent cancel cannot interleave with this check.
	release, err := s.locks.Acquire(ctx, booking.TutorKey(), booking.StudentKey())
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusPending {
		return nil, &InvalidTransitionError{ID: id, From: booking.EffectiveStatus(s.now()), Op: "confirm"}
	}

	if err := s.bookings.UpdateStatus(ctx, id, model.BookingStatusConfirmed); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	booking.Status = model.BookingStatusConfirmed

	s.logger.Info("Booking confirmed", zap.Int64("booking_id", id))

	return booking, nil
}

// Cancel frees a pending or confirmed booking's slot. Completed bookings
// (confirmed and past their end) cannot be canceled, and cancel is strict
// rather than idempotent: canceling twice is a transition error.
func (s *BookingService) Cancel(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, booking.TutorKey(), booking.StudentKey())
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	effective := booking.EffectiveStatus(s.now())
	if effective != model.BookingStatusPending && effective != model.BookingStatusConfirmed {
		return nil, &InvalidTransitionError{ID: id, From: effective, Op: "cancel"}
	}

	if err := s.bookings.UpdateStatus(ctx, id, model.BookingStatusCanceled); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	booking.Status = model.BookingStatusCanceled

	// A canceled booking must never linger in the index.
	s.mustUnindex(booking.TutorKey(), booking.Ref())
	s.mustUnindex(booking.StudentKey(), booking.Ref())

	s.logger.Info("Booking canceled", zap.Int64("booking_id", id))

	return booking, nil
}

// Reschedule moves a pending or confirmed booking to a new range. The
// trial conflict check excludes the booking's own current interval, so
// rescheduling to a range overlapping (or equal to) itself succeeds. On
// conflict nothing changes.
func (s *BookingService) Reschedule(ctx context.Context, id int64, tr schedule.TimeRange) (*model.Booking, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	tutorKey, studentKey := booking.TutorKey(), booking.StudentKey()

	release, err := s.locks.Acquire(ctx, tutorKey, studentKey)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	effective := booking.EffectiveStatus(s.now())
	if effective != model.BookingStatusPending && effective != model.BookingStatusConfirmed {
		return nil, &InvalidTransitionError{ID: id, From: effective, Op: "reschedule"}
	}

	if conflicts := s.index.Overlapping(tutorKey, tr, booking.Ref()); len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Key: tutorKey, Conflicts: conflicts}
	}
	if conflicts := s.index.Overlapping(studentKey, tr, booking.Ref()); len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Key: studentKey, Conflicts: conflicts}
	}

	if err := s.bookings.UpdateTimeRange(ctx, id, tr); err != nil {
		return nil, fmt.Errorf("reschedule booking: %w", err)
	}

	s.mustUnindex(tutorKey, booking.Ref())
	s.mustUnindex(studentKey, booking.Ref())
	s.mustIndex(tutorKey, booking.Ref(), tr)
	s.mustIndex(studentKey, booking.Ref(), tr)

	old := booking.Range
	booking.Range = tr

	s.logger.Info("Booking rescheduled",
		zap.Int64("booking_id", id),
		zap.Time("old_start", old.Start),
		zap.Time("new_start", tr.Start),
	)

	return booking, nil
}

// Get returns one booking with its read-time status applied.
func (s *BookingService) Get(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Status = booking.EffectiveStatus(s.now())
	return booking, nil
}

// ListByParticipant returns the participant's non-canceled bookings
// intersecting the window, with read-time statuses applied.
func (s *BookingService) ListByParticipant(ctx context.Context, key schedule.ParticipantKey, window schedule.TimeRange) ([]*model.Booking, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetByParticipant(ctx, key, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, b := range bookings {
		b.Status = b.EffectiveStatus(now)
	}

	return bookings, nil
}

func (s *BookingService) load(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) requireActive(ctx context.Context, key schedule.ParticipantKey) error {
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

// mustIndex and mustUnindex treat index failures as engine bugs: the
// conflict check and the mutation run under the same locks, so the index
// can only disagree with the store if the engine itself is broken.
// DPanic aborts in development and logs in production.
func (s *BookingService) mustIndex(key schedule.ParticipantKey, ref schedule.Ref, tr schedule.TimeRange) {
	if err := s.index.Insert(key, ref, tr); err != nil {
		s.logger.DPanic("Conflict index insert failed", zap.Error(err), zap.String("key", key.String()))
	}
}

func (s *BookingService) mustUnindex(key schedule.ParticipantKey, ref schedule.Ref) {
	if err := s.index.Remove(key, ref); err != nil {
		s.logger.DPanic("Conflict index remove failed", zap.Error(err), zap.String("key", key.String()))
	}
}
