package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/data"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/providers"
)

// ProviderStatus reports breaker state per provider, implemented by the chain.
type ProviderStatus interface {
	Status() map[string]string
}

// Pinger reports Redis reachability. Nil when the tier is disabled.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers serves the dashboard page and the JSON API.
type Handlers struct {
	series      *data.Facade
	base        string // e.g. BTC-USD
	quote       string // e.g. ETH-USD
	defaultDays int
	status      ProviderStatus
	redis       Pinger
}

// NewHandlers creates the handler set for the two configured assets.
func NewHandlers(series *data.Facade, base, quote string, defaultDays int, status ProviderStatus, redis Pinger) *Handlers {
	if defaultDays <= 0 {
		defaultDays = 365
	}
	return &Handlers{
		series:      series,
		base:        base,
		quote:       quote,
		defaultDays: defaultDays,
		status:      status,
		redis:       redis,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	})
}

// fetchError maps upstream failures onto HTTP statuses: exhausted providers
// are a bad gateway, an empty range is the caller's problem.
func (h *Handlers) fetchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, providers.ErrAllProvidersFailed):
		h.writeError(w, r, http.StatusBadGateway, "upstream_unavailable",
			"Price data is unavailable right now, try again shortly")
	case errors.Is(err, domain.ErrEmptySeries):
		h.writeError(w, r, http.StatusUnprocessableEntity, "empty_range",
			"No price data in the selected range, pick a different one")
	default:
		h.writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// rangeError distinguishes malformed dates (the caller's syntax) from ranges
// that parse but select no data.
func (h *Handlers) rangeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrEmptySeries) ||
		errors.Is(err, domain.ErrZeroBase) ||
		errors.Is(err, providers.ErrAllProvidersFailed) {
		h.fetchError(w, r, err)
		return
	}
	h.writeError(w, r, http.StatusBadRequest, "bad_range", err.Error())
}

// parseRange reads start/end query params (with the given prefix) and falls
// back to the default window inside bounds. Reversed ranges swap; a range
// with no days inside bounds surfaces as ErrEmptySeries.
func parseRange(r *http.Request, prefix string, bounds domain.DateRange, defaultDays int) (domain.DateRange, error) {
	start := r.URL.Query().Get(prefix + "start")
	end := r.URL.Query().Get(prefix + "end")
	if start == "" && end == "" {
		return domain.LastDays(bounds, defaultDays), nil
	}
	if start == "" {
		start = bounds.Start.Format("2006-01-02")
	}
	if end == "" {
		end = bounds.End.Format("2006-01-02")
	}
	parsed, err := domain.ParseDateRange(start, end)
	if err != nil {
		return domain.DateRange{}, err
	}
	clipped, ok := parsed.Intersect(bounds)
	if !ok {
		return domain.DateRange{}, fmt.Errorf("range %s outside available data: %w", parsed, domain.ErrEmptySeries)
	}
	return clipped, nil
}

// symbolFromPath resolves the {symbol} path variable against the two
// configured assets.
func (h *Handlers) symbolFromPath(r *http.Request) (string, bool) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == h.base || symbol == h.quote {
		return symbol, true
	}
	return symbol, false
}

// Series handles GET /api/series/{symbol}.
func (h *Handlers) Series(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolFromPath(r)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "unknown_symbol",
			"Symbol is not one of the compared assets: "+symbol)
		return
	}

	series, err := h.series.Series(r.Context(), symbol)
	if err != nil {
		h.fetchError(w, r, err)
		return
	}

	bounds := domain.DateRange{Start: series.First().Date, End: series.Last().Date}
	rng, err := parseRange(r, "", bounds, h.defaultDays)
	if err != nil {
		h.rangeError(w, r, err)
		return
	}

	clipped := series.Clip(rng)
	if clipped.Empty() {
		h.fetchError(w, r, domain.ErrEmptySeries)
		return
	}

	h.writeJSON(w, http.StatusOK, SeriesResponse{
		Series:    clipped,
		Range:     rangeInfo(rng),
		Generated: time.Now().UTC(),
	})
}

// Returns handles GET /api/returns/{symbol}.
func (h *Handlers) Returns(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolFromPath(r)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "unknown_symbol",
			"Symbol is not one of the compared assets: "+symbol)
		return
	}

	series, err := h.series.Series(r.Context(), symbol)
	if err != nil {
		h.fetchError(w, r, err)
		return
	}

	bounds := domain.DateRange{Start: series.First().Date, End: series.Last().Date}
	rng, err := parseRange(r, "", bounds, h.defaultDays)
	if err != nil {
		h.rangeError(w, r, err)
		return
	}

	returns, err := series.Rebase(rng)
	if err != nil {
		h.fetchError(w, r, err)
		return
	}
	summary, err := series.SummaryReturn(rng)
	if err != nil {
		h.fetchError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ReturnsResponse{
		Returns:   returns,
		Range:     rangeInfo(rng),
		Summary:   summary,
		Generated: time.Now().UTC(),
	})
}

// Compare handles GET /api/compare. Each panel takes its own range via
// base_start/base_end and quote_start/quote_end; missing params fall back to
// the default trailing window of the overlap.
func (h *Handlers) Compare(w http.ResponseWriter, r *http.Request) {
	resp, status, err := h.compare(r)
	if err != nil {
		if status == http.StatusBadRequest {
			h.writeError(w, r, status, "bad_range", err.Error())
		} else {
			h.fetchError(w, r, err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// compare builds the comparison payload shared by the API and the dashboard
// page. The returned status is only meaningful when err != nil.
func (h *Handlers) compare(r *http.Request) (CompareResponse, int, error) {
	ctx := r.Context()

	baseSeries, err := h.series.Series(ctx, h.base)
	if err != nil {
		return CompareResponse{}, http.StatusBadGateway, err
	}
	quoteSeries, err := h.series.Series(ctx, h.quote)
	if err != nil {
		return CompareResponse{}, http.StatusBadGateway, err
	}

	bounds, err := domain.Overlap(baseSeries, quoteSeries)
	if err != nil {
		return CompareResponse{}, http.StatusUnprocessableEntity, err
	}

	panels := make([]PanelResult, 0, 2)
	for _, p := range []struct {
		prefix string
		series domain.PriceSeries
	}{
		{"base_", baseSeries},
		{"quote_", quoteSeries},
	} {
		rng, err := parseRange(r, p.prefix, bounds, h.defaultDays)
		if err != nil {
			if errors.Is(err, domain.ErrEmptySeries) {
				return CompareResponse{}, http.StatusUnprocessableEntity, err
			}
			return CompareResponse{}, http.StatusBadRequest, err
		}
		returns, err := p.series.Rebase(rng)
		if err != nil {
			return CompareResponse{}, http.StatusUnprocessableEntity, err
		}
		summary, err := p.series.SummaryReturn(rng)
		if err != nil {
			return CompareResponse{}, http.StatusUnprocessableEntity, err
		}
		color := "green"
		if summary < 0 {
			color = "red"
		}
		panels = append(panels, PanelResult{
			Symbol:  p.series.Symbol,
			Range:   rangeInfo(rng),
			Summary: summary,
			Color:   color,
			Returns: returns,
		})
	}

	// Biggest mover first, matching the original display order.
	sort.SliceStable(panels, func(i, j int) bool {
		return math.Abs(panels[i].Summary) > math.Abs(panels[j].Summary)
	})

	return CompareResponse{
		Bounds:  rangeInfo(bounds),
		Default: rangeInfo(domain.LastDays(bounds, h.defaultDays)),
		Assets: []AssetInfo{
			{Symbol: h.base, Range: rangeInfo(domain.DateRange{Start: baseSeries.First().Date, End: baseSeries.Last().Date})},
			{Symbol: h.quote, Range: rangeInfo(domain.DateRange{Start: quoteSeries.First().Date, End: quoteSeries.Last().Date})},
		},
		Panels:    panels,
		Generated: time.Now().UTC(),
	}, http.StatusOK, nil
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.series.MemoryStats()
	redisState := "disabled"
	if h.redis != nil {
		redisState = "ok"
		if err := h.redis.Ping(r.Context()); err != nil {
			redisState = "down"
		}
	}

	providerStatus := map[string]string{}
	if h.status != nil {
		providerStatus = h.status.Status()
	}

	status := "healthy"
	for _, state := range providerStatus {
		if state != "closed" {
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Providers: providerStatus,
		Cache: CacheHealth{
			Hits:      stats.Hits,
			Misses:    stats.Misses,
			Evictions: stats.Evictions,
			Redis:     redisState,
		},
		Timestamp: time.Now().UTC(),
	})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
