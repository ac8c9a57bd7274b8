package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// In-memory stores standing in for the PostgreSQL repositories. They
// clone on the way in and out so service-side mutations cannot alias
// stored state, mirroring what a real round-trip through the database
// gives us.

type memBookings struct {
	mu      sync.Mutex
	seq     int64
	records map[int64]*model.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{records: make(map[int64]*model.Booking)}
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func (m *memBookings) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	booking.ID = m.seq
	booking.CreatedAt = time.Now()
	m.records[booking.ID] = cloneBooking(booking)
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(b), nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, status model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.records[id]
	if !ok {
		return fmt.Errorf("booking %d not found", id)
	}
	b.Status = status
	return nil
}

func (m *memBookings) UpdateTimeRange(_ context.Context, id int64, tr schedule.TimeRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.records[id]
	if !ok {
		return fmt.Errorf("booking %d not found", id)
	}
	b.Range = tr
	return nil
}

func (m *memBookings) GetActive(_ context.Context) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.records {
		if b.IsActive() {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (m *memBookings) GetByParticipant(_ context.Context, key schedule.ParticipantKey, from, to time.Time) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	window := schedule.TimeRange{Start: from, End: to}
	var out []*model.Booking
	for _, b := range m.records {
		if !b.IsActive() || !b.Range.Overlaps(window) {
			continue
		}
		if (key.Role == schedule.RoleTutor && b.TutorID == key.ID) ||
			(key.Role == schedule.RoleStudent && b.StudentID == key.ID) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

type memNotes struct {
	mu      sync.Mutex
	seq     int64
	records map[int64]*model.CalendarNote
}

func newMemNotes() *memNotes {
	return &memNotes{records: make(map[int64]*model.CalendarNote)}
}

func cloneNote(n *model.CalendarNote) *model.CalendarNote {
	c := *n
	c.TutorIDs = append([]int64(nil), n.TutorIDs...)
	return &c
}

func (m *memNotes) Create(_ context.Context, note *model.CalendarNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	note.ID = m.seq
	note.CreatedAt = time.Now()
	m.records[note.ID] = cloneNote(note)
	return nil
}

func (m *memNotes) GetByID(_ context.Context, id int64) (*model.CalendarNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return cloneNote(n), nil
}

func (m *memNotes) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("calendar note %d not found", id)
	}
	delete(m.records, id)
	return nil
}

func (m *memNotes) GetAll(_ context.Context) ([]*model.CalendarNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CalendarNote
	for _, n := range m.records {
		out = append(out, cloneNote(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memDirectory struct {
	participants map[schedule.ParticipantKey]model.ParticipantStatus
}

func newMemDirectory() *memDirectory {
	return &memDirectory{participants: make(map[schedule.ParticipantKey]model.ParticipantStatus)}
}

func (m *memDirectory) add(key schedule.ParticipantKey, status model.ParticipantStatus) {
	m.participants[key] = status
}

func (m *memDirectory) Get(_ context.Context, key schedule.ParticipantKey) (*model.Participant, error) {
	status, ok := m.participants[key]
	if !ok {
		return nil, nil
	}
	return &model.Participant{ID: key.ID, Role: key.Role, Status: status}, nil
}

// testEngine bundles everything the scenario tests need.
type testEngine struct {
	bookings     *BookingService
	availability *AvailabilityService
	notes        *CalendarNoteService
	store        *memBookings
	noteStore    *memNotes
	directory    *memDirectory
	index        *schedule.ConflictIndex
}

func newTestEngine() *testEngine {
	directory := newMemDirectory()
	for _, id := range []int64{1, 2, 3} {
		directory.add(schedule.TutorKey(id), model.ParticipantStatusActive)
	}
	directory.add(schedule.TutorKey(4), model.ParticipantStatusSuspended)
	for _, id := range []int64{10, 20, 30} {
		directory.add(schedule.StudentKey(id), model.ParticipantStatusActive)
	}
	directory.add(schedule.StudentKey(40), model.ParticipantStatusInactive)

	store := newMemBookings()
	noteStore := newMemNotes()
	index := schedule.NewConflictIndex()
	locks := schedule.NewKeyLocks(2 * time.Second)
	logger := zap.NewNop()

	return &testEngine{
		bookings:     NewBookingService(store, directory, index, locks, logger),
		availability: NewAvailabilityService(directory, index, logger),
		notes:        NewCalendarNoteService(noteStore, directory, index, locks, logger),
		store:        store,
		noteStore:    noteStore,
		directory:    directory,
		index:        index,
	}
}
