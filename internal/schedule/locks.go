package schedule

import (
	"context"
	"sort"
	"sync"
	"time"
)

// KeyLocks hands out exclusive locks scoped to participant keys. The
// check-then-insert sequence in create and reschedule runs under these
// locks so that two concurrent bookings for the same tutor or student
// cannot both pass the conflict check.
//
// Acquisition waits at most the configured duration; on timeout the
// operation fails with ErrContended rather than blocking indefinitely.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[ParticipantKey]chan struct{}
	wait  time.Duration
}

// NewKeyLocks creates a lock table with the given maximum wait per
// acquisition.
func NewKeyLocks(wait time.Duration) *KeyLocks {
	return &KeyLocks{
		locks: make(map[ParticipantKey]chan struct{}),
		wait:  wait,
	}
}

func (l *KeyLocks) sem(key ParticipantKey) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		// Semaphores are never removed: the table is bounded by the
		// number of participants ever booked on this node.
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// Acquire takes the locks for all given keys, deduplicated and in global
// key order, and returns a release function. On timeout or context
// cancellation every lock taken so far is released and ErrContended
// (or the context error) is returned.
func (l *KeyLocks) Acquire(ctx context.Context, keys ...ParticipantKey) (func(), error) {
	ordered := dedupKeys(keys)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range ordered {
		ch := l.sem(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			release()
			return nil, ErrContended
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}

func dedupKeys(keys []ParticipantKey) []ParticipantKey {
	ordered := make([]ParticipantKey, 0, len(keys))
	seen := make(map[ParticipantKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			ordered = append(ordered, k)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Less(ordered[j]) })
	return ordered
}
