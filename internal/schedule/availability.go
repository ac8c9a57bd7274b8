package schedule

import "iter"

// FreeSlots computes the complement of the busy intervals within the
// window: the gaps between consecutive booked intervals plus the stretches
// before the first and after the last, clipped to the window's bounds.
//
// busy must be sorted by start (BusyWithin returns it that way). The
// result is a finite, restartable sequence over the snapshot passed in;
// re-iterating yields the same slots.
func FreeSlots(window TimeRange, busy []Entry) iter.Seq[TimeRange] {
	return func(yield func(TimeRange) bool) {
		cursor := window.Start
		for _, e := range busy {
			if !e.Range.Start.Before(window.End) {
				break
			}
			if e.Range.Start.After(cursor) {
				if !yield(TimeRange{Start: cursor, End: e.Range.Start}) {
					return
				}
			}
			if e.Range.End.After(cursor) {
				cursor = e.Range.End
			}
		}
		if cursor.Before(window.End) {
			yield(TimeRange{Start: cursor, End: window.End})
		}
	}
}
