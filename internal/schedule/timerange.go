package schedule

import "time"

// TimeRange is a half-open interval [Start, End). The end instant is
// exclusive, so a range ending exactly when another begins does not overlap it.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a validated range. Zero-length and inverted ranges
// are rejected with *InvalidRangeError.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Validate checks the start < end invariant.
func (r TimeRange) Validate() error {
	if !r.Start.Before(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Overlaps reports whether the two ranges share any instant.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
