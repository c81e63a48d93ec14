package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive comparison window. A reversed range is tolerated
// everywhere: Normalized swaps the ends rather than rejecting.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a normalized range from two instants.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}.Normalized()
}

// ParseDateRange parses two YYYY-MM-DD strings into a normalized range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end %q: %w", end, err)
	}
	return NewDateRange(s, e), nil
}

// Normalized returns the range with start <= end, swapping when reversed.
func (r DateRange) Normalized() DateRange {
	if r.Start.After(r.End) {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// Intersect shrinks r so it fits inside bounds. The second result is false
// when the two ranges do not overlap at all.
func (r DateRange) Intersect(bounds DateRange) (DateRange, bool) {
	r = r.Normalized()
	bounds = bounds.Normalized()
	if r.End.Before(bounds.Start) || r.Start.After(bounds.End) {
		return DateRange{}, false
	}
	if r.Start.Before(bounds.Start) {
		r.Start = bounds.Start
	}
	if r.End.After(bounds.End) {
		r.End = bounds.End
	}
	return r, true
}

// Contains reports whether t falls inside the range, inclusive.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	r = r.Normalized()
	return !d.Before(r.Start) && !d.After(r.End)
}

// LastDays returns the trailing n-day window of bounds, the default panel
// selection when the user has not picked anything yet.
func LastDays(bounds DateRange, n int) DateRange {
	bounds = bounds.Normalized()
	start := bounds.End.AddDate(0, 0, -n)
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	return DateRange{Start: start, End: bounds.End}
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}
