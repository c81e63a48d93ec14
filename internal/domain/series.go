// Package domain holds the price and return series math for the comparison panels.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptySeries means a series has no points inside the requested range.
	ErrEmptySeries = errors.New("series has no points in range")
	// ErrZeroBase means the rebase point has a zero price, so returns are undefined.
	ErrZeroBase = errors.New("rebase price is zero")
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is an ordered daily close series for one asset. Points are
// ascending by date and immutable once built.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Day truncates t to a UTC calendar day. All series math keys on days, not
// instants, so every date passes through here first.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewPriceSeries builds a series from points, dropping non-positive prices and
// normalizing dates to UTC days. Points landing on the same day collapse to
// the latest value; some upstreams append an intraday quote after the last
// daily bar. Input must already be sorted ascending, which both providers
// guarantee.
func NewPriceSeries(symbol string, points []PricePoint) PriceSeries {
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if p.Price <= 0 {
			continue // null bars from the upstream (holidays, listing gaps)
		}
		day := Day(p.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Price = p.Price
			continue
		}
		out = append(out, PricePoint{Date: day, Price: p.Price})
	}
	return PriceSeries{Symbol: symbol, Points: out}
}

// Empty reports whether the series has no usable points.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// First returns the earliest point. Caller must check Empty first.
func (s PriceSeries) First() PricePoint { return s.Points[0] }

// Last returns the latest point. Caller must check Empty first.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Clip returns the sub-series inside r, inclusive on both ends.
func (s PriceSeries) Clip(r DateRange) PriceSeries {
	r = r.Normalized()
	lo, hi := 0, len(s.Points)
	for lo < hi && s.Points[lo].Date.Before(r.Start) {
		lo++
	}
	for hi > lo && s.Points[hi-1].Date.After(r.End) {
		hi--
	}
	return PriceSeries{Symbol: s.Symbol, Points: s.Points[lo:hi]}
}

// Rebase clips the series to r and rescales it so the first retained point
// equals 100. The first point's date becomes the rebase date, which may be
// later than r.Start when the asset has no data that early.
func (s PriceSeries) Rebase(r DateRange) (ReturnSeries, error) {
	clipped := s.Clip(r)
	if clipped.Empty() {
		return ReturnSeries{}, fmt.Errorf("%s %s..%s: %w",
			s.Symbol, r.Normalized().Start.Format(dateLayout), r.Normalized().End.Format(dateLayout), ErrEmptySeries)
	}
	base := clipped.First().Price
	if base == 0 {
		return ReturnSeries{}, fmt.Errorf("%s: %w", s.Symbol, ErrZeroBase)
	}
	points := make([]ReturnPoint, len(clipped.Points))
	for i, p := range clipped.Points {
		points[i] = ReturnPoint{Date: p.Date, Value: p.Price / base * 100}
	}
	return ReturnSeries{
		Symbol: s.Symbol,
		Base:   clipped.First().Date,
		Points: points,
	}, nil
}

// SummaryReturn is the end-to-end percentage change over the clipped range,
// (last/first - 1) * 100.
func (s PriceSeries) SummaryReturn(r DateRange) (float64, error) {
	clipped := s.Clip(r)
	if clipped.Empty() {
		return 0, fmt.Errorf("%s: %w", s.Symbol, ErrEmptySeries)
	}
	first := clipped.First().Price
	if first == 0 {
		return 0, fmt.Errorf("%s: %w", s.Symbol, ErrZeroBase)
	}
	return (clipped.Last().Price/first - 1) * 100, nil
}

// ReturnPoint is one rebased value; Value is a percentage of the base price,
// so the rebase date carries exactly 100.
type ReturnPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ReturnSeries is a PriceSeries rescaled so the point at Base equals 100.
type ReturnSeries struct {
	Symbol string        `json:"symbol"`
	Base   time.Time     `json:"base"`
	Points []ReturnPoint `json:"points"`
}

// Overlap returns the date window covered by both series, the widest range a
// comparison panel may select.
func Overlap(a, b PriceSeries) (DateRange, error) {
	if a.Empty() || b.Empty() {
		return DateRange{}, ErrEmptySeries
	}
	start := a.First().Date
	if b.First().Date.After(start) {
		start = b.First().Date
	}
	end := a.Last().Date
	if b.Last().Date.Before(end) {
		end = b.Last().Date
	}
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%s and %s do not overlap: %w", a.Symbol, b.Symbol, ErrEmptySeries)
	}
	return DateRange{Start: start, End: end}, nil
}
