package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func rng(startHour, startMin, endHour, endMin int) TimeRange {
	return TimeRange{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func TestNewTimeRange(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := NewTimeRange(at(9, 0), at(10, 0))
		require.NoError(t, err)
		assert.Equal(t, at(9, 0), r.Start)
		assert.Equal(t, at(10, 0), r.End)
	})

	t.Run("zero length rejected", func(t *testing.T) {
		_, err := NewTimeRange(at(9, 0), at(9, 0))
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("inverted rejected", func(t *testing.T) {
		_, err := NewTimeRange(at(10, 0), at(9, 0))
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})
}

func TestTimeRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{"identical", rng(9, 0, 10, 0), rng(9, 0, 10, 0), true},
		{"partial", rng(9, 0, 10, 0), rng(9, 30, 10, 30), true},
		{"contained", rng(9, 0, 12, 0), rng(10, 0, 11, 0), true},
		{"disjoint", rng(9, 0, 10, 0), rng(11, 0, 12, 0), false},
		{"back to back is not a conflict", rng(9, 0, 10, 0), rng(10, 0, 11, 0), false},
		{"one minute apart", rng(9, 0, 10, 0), rng(10, 1, 11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestTimeRangeOverlapsSymmetry(t *testing.T) {
	// Random ranges on a small grid so overlap and adjacency both occur.
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		aStart := r.Intn(48)
		bStart := r.Intn(48)
		a := TimeRange{Start: at(aStart, 0), End: at(aStart+1+r.Intn(4), 0)}
		b := TimeRange{Start: at(bStart, 0), End: at(bStart+1+r.Intn(4), 0)}
		assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%v b=%v", a, b)
	}
}

func TestTimeRangeContains(t *testing.T) {
	r := rng(9, 0, 10, 0)

	assert.True(t, r.Contains(at(9, 0)), "start is inclusive")
	assert.True(t, r.Contains(at(9, 30)))
	assert.False(t, r.Contains(at(10, 0)), "end is exclusive")
	assert.False(t, r.Contains(at(8, 59)))
}

func TestTimeRangeDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, rng(9, 0, 10, 30).Duration())
}
