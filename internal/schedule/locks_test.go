package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLocksAcquireRelease(t *testing.T) {
	locks := NewKeyLocks(time.Second)

	release, err := locks.Acquire(context.Background(), TutorKey(1), StudentKey(10))
	require.NoError(t, err)
	release()

	// Released locks can be taken again.
	release, err = locks.Acquire(context.Background(), TutorKey(1), StudentKey(10))
	require.NoError(t, err)
	release()
}

func TestKeyLocksContention(t *testing.T) {
	locks := NewKeyLocks(20 * time.Millisecond)

	release, err := locks.Acquire(context.Background(), TutorKey(1))
	require.NoError(t, err)
	defer release()

	_, err = locks.Acquire(context.Background(), TutorKey(1))
	assert.ErrorIs(t, err, ErrContended)

	// An unrelated key is not contended.
	release2, err := locks.Acquire(context.Background(), TutorKey(2))
	require.NoError(t, err)
	release2()
}

func TestKeyLocksPartialFailureReleasesEverything(t *testing.T) {
	locks := NewKeyLocks(20 * time.Millisecond)

	// Hold the student lock so a tutor+student acquisition fails halfway.
	release, err := locks.Acquire(context.Background(), StudentKey(10))
	require.NoError(t, err)

	_, err = locks.Acquire(context.Background(), TutorKey(1), StudentKey(10))
	require.ErrorIs(t, err, ErrContended)
	release()

	// The tutor lock taken during the failed attempt must have been
	// released along the way.
	release, err = locks.Acquire(context.Background(), TutorKey(1), StudentKey(10))
	require.NoError(t, err)
	release()
}

func TestKeyLocksSwappedOrderNoDeadlock(t *testing.T) {
	// Two workers repeatedly taking the same pair in swapped argument
	// order: global key ordering must keep them from deadlocking.
	locks := NewKeyLocks(5 * time.Second)
	a, b := TutorKey(1), TutorKey(2)

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		keys := []ParticipantKey{a, b}
		if w == 1 {
			keys = []ParticipantKey{b, a}
		}
		wg.Add(1)
		go func(keys []ParticipantKey) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				release, err := locks.Acquire(context.Background(), keys...)
				if err != nil {
					t.Error(err)
					return
				}
				release()
			}
		}(keys)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("lock workers deadlocked")
	}
}

func TestKeyLocksContextCancellation(t *testing.T) {
	locks := NewKeyLocks(time.Minute)

	release, err := locks.Acquire(context.Background(), TutorKey(1))
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = locks.Acquire(ctx, TutorKey(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyLocksDuplicateKeys(t *testing.T) {
	locks := NewKeyLocks(time.Second)

	// The same key passed twice must not self-deadlock.
	release, err := locks.Acquire(context.Background(), TutorKey(1), TutorKey(1))
	require.NoError(t, err)
	release()
}
