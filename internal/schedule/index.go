package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RefKind distinguishes what kind of record occupies a calendar entry.
type RefKind string

const (
	RefBooking RefKind = "booking"
	RefNote    RefKind = "note"
)

// Ref identifies the record behind an index entry.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   int64   `json:"id"`
}

// BookingRef builds a ref for a booking record.
func BookingRef(id int64) Ref { return Ref{Kind: RefBooking, ID: id} }

// NoteRef builds a ref for a calendar note.
func NoteRef(id int64) Ref { return Ref{Kind: RefNote, ID: id} }

// Entry is one occupied interval on a participant's calendar.
type Entry struct {
	Ref   Ref       `json:"ref"`
	Range TimeRange `json:"range"`
}

// ConflictIndex maintains, per participant key, the set of non-cancelled
// booked intervals and answers overlap queries in O(log n + k). It is a
// derived structure: the booking store stays the source of truth and the
// index is rebuilt from it at startup.
//
// The index is safe for concurrent use. Writers for the same participant
// are additionally serialized by the engine's key locks; the internal
// mutex only protects the structure itself.
type ConflictIndex struct {
	mu        sync.RWMutex
	calendars map[ParticipantKey]*calendar
}

type calendar struct {
	entries []Entry           // sorted by Range.Start
	byRef   map[Ref]TimeRange // removal lookup
	maxSpan time.Duration     // longest interval ever inserted, bounds leftward scans
}

// NewConflictIndex returns an empty index.
func NewConflictIndex() *ConflictIndex {
	return &ConflictIndex{calendars: make(map[ParticipantKey]*calendar)}
}

// Insert adds an interval to the participant's calendar. The caller must
// have passed a conflict check under the participant's lock first. A
// duplicate ref indicates an engine bug and is returned as an error.
func (x *ConflictIndex) Insert(key ParticipantKey, ref Ref, r TimeRange) error {
	if err := r.Validate(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	cal := x.calendars[key]
	if cal == nil {
		cal = &calendar{byRef: make(map[Ref]TimeRange)}
		x.calendars[key] = cal
	}

	if _, ok := cal.byRef[ref]; ok {
		return fmt.Errorf("conflict index: %s %d already indexed for %s", ref.Kind, ref.ID, key)
	}

	i := sort.Search(len(cal.entries), func(i int) bool {
		return !cal.entries[i].Range.Start.Before(r.Start)
	})
	cal.entries = append(cal.entries, Entry{})
	copy(cal.entries[i+1:], cal.entries[i:])
	cal.entries[i] = Entry{Ref: ref, Range: r}

	cal.byRef[ref] = r
	if d := r.Duration(); d > cal.maxSpan {
		cal.maxSpan = d
	}

	return nil
}

// Remove deletes a previously inserted interval (cancel, reschedule, note
// deletion). Removing a ref that was never inserted indicates an engine
// bug and is returned as an error.
func (x *ConflictIndex) Remove(key ParticipantKey, ref Ref) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	cal := x.calendars[key]
	if cal == nil {
		return fmt.Errorf("conflict index: no calendar for %s", key)
	}
	r, ok := cal.byRef[ref]
	if !ok {
		return fmt.Errorf("conflict index: %s %d not indexed for %s", ref.Kind, ref.ID, key)
	}

	i := sort.Search(len(cal.entries), func(i int) bool {
		return !cal.entries[i].Range.Start.Before(r.Start)
	})
	for ; i < len(cal.entries); i++ {
		if cal.entries[i].Ref == ref {
			cal.entries = append(cal.entries[:i], cal.entries[i+1:]...)
			break
		}
	}
	delete(cal.byRef, ref)

	return nil
}

// Overlapping returns all entries on the participant's calendar that
// overlap the candidate range, in ascending start order. Refs listed in
// exclude are skipped, which lets a reschedule ignore the record's own
// current interval.
func (x *ConflictIndex) Overlapping(key ParticipantKey, r TimeRange, exclude ...Ref) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	cal := x.calendars[key]
	if cal == nil {
		return nil
	}

	skip := make(map[Ref]bool, len(exclude))
	for _, ref := range exclude {
		skip[ref] = true
	}

	// Entries starting at or after r.End cannot overlap a half-open range.
	// Scanning leftward from there, anything starting before r.Start-maxSpan
	// must already have ended, so the scan is bounded.
	hi := sort.Search(len(cal.entries), func(i int) bool {
		return !cal.entries[i].Range.Start.Before(r.End)
	})
	floor := r.Start.Add(-cal.maxSpan)

	var out []Entry
	for i := hi - 1; i >= 0; i-- {
		e := cal.entries[i]
		if e.Range.Start.Before(floor) {
			break
		}
		if e.Range.End.After(r.Start) && !skip[e.Ref] {
			out = append(out, e)
		}
	}

	// Reverse into ascending start order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// BusyWithin returns every entry intersecting the window, sorted by start.
// It is the read path for availability computation.
func (x *ConflictIndex) BusyWithin(key ParticipantKey, window TimeRange) []Entry {
	return x.Overlapping(key, window)
}
