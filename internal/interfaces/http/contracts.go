package http

import (
	"time"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

// RangeInfo is a date range in wire format (YYYY-MM-DD).
type RangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AssetInfo describes one asset's available history window.
type AssetInfo struct {
	Symbol string    `json:"symbol"`
	Range  RangeInfo `json:"range"`
}

// SeriesResponse wraps a raw price series.
type SeriesResponse struct {
	Series    domain.PriceSeries `json:"series"`
	Range     RangeInfo          `json:"range"`
	Generated time.Time          `json:"generated"`
}

// ReturnsResponse wraps one rebased return series.
type ReturnsResponse struct {
	Returns   domain.ReturnSeries `json:"returns"`
	Range     RangeInfo           `json:"range"`
	Summary   float64             `json:"summary_pct"`
	Generated time.Time           `json:"generated"`
}

// PanelResult is one comparison panel: an asset rebased over its own range.
type PanelResult struct {
	Symbol  string              `json:"symbol"`
	Range   RangeInfo           `json:"range"`
	Summary float64             `json:"summary_pct"`
	Color   string              `json:"color"` // green for gains, red for losses
	Returns domain.ReturnSeries `json:"returns"`
}

// CompareResponse carries both panels, ordered by summary magnitude
// (biggest mover first), plus the selectable bounds.
type CompareResponse struct {
	Bounds    RangeInfo     `json:"bounds"`
	Default   RangeInfo     `json:"default_range"`
	Assets    []AssetInfo   `json:"assets"`
	Panels    []PanelResult `json:"panels"`
	Generated time.Time     `json:"generated"`
}

// HealthResponse reports service, cache and provider health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Providers map[string]string `json:"providers"`
	Cache     CacheHealth       `json:"cache"`
	Timestamp time.Time         `json:"timestamp"`
}

// CacheHealth reports the hot tier counters and Redis reachability.
type CacheHealth struct {
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
	Redis     string `json:"redis"` // "ok", "down" or "disabled"
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func rangeInfo(r domain.DateRange) RangeInfo {
	return RangeInfo{
		Start: r.Start.Format("2006-01-02"),
		End:   r.End.Format("2006-01-02"),
	}
}
