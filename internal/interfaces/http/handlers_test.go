package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/config"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/data"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/telemetry"
)

type stubQuotes struct {
	series map[string]domain.PriceSeries
	err    error
}

func (s *stubQuotes) Name() string { return "stub" }

func (s *stubQuotes) DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	if s.err != nil {
		return domain.PriceSeries{}, s.err
	}
	series, ok := s.series[symbol]
	if !ok {
		return domain.PriceSeries{}, fmt.Errorf("no stub series for %s", symbol)
	}
	return series, nil
}

func (s *stubQuotes) Status() map[string]string {
	return map[string]string{"stub": "closed"}
}

func seriesOf(symbol, start string, prices ...float64) domain.PriceSeries {
	day, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{Date: day.AddDate(0, 0, i), Price: p}
	}
	return domain.NewPriceSeries(symbol, points)
}

func testServer(t *testing.T, source *stubQuotes) *Server {
	t.Helper()
	metrics := telemetry.NewMetrics()
	facade := data.NewFacade(data.NewMemoryCache(8), nil, source, time.Hour, metrics)
	handlers := NewHandlers(facade, "BTC-USD", "ETH-USD", 365, source, nil)
	return NewServer(config.Default().Server, handlers, metrics)
}

func defaultSource() *stubQuotes {
	return &stubQuotes{series: map[string]domain.PriceSeries{
		"BTC-USD": seriesOf("BTC-USD", "2024-01-01", 40000, 42000, 44000, 41000, 43000),
		"ETH-USD": seriesOf("ETH-USD", "2024-01-02", 2200, 2310, 2090, 2450),
	}}
}

func get(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestReturns_RebaseStartsAtHundred(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/returns/BTC-USD?start=2024-01-02&end=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReturnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Returns.Points)
	assert.Equal(t, 100.0, resp.Returns.Points[0].Value)
	assert.Equal(t, "2024-01-02", resp.Range.Start)
	assert.InDelta(t, (43000.0/42000.0-1)*100, resp.Summary, 1e-9)
}

func TestReturns_ReversedRangeSwaps(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/returns/BTC-USD?start=2024-01-05&end=2024-01-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReturnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-01-02", resp.Range.Start)
	assert.Equal(t, "2024-01-05", resp.Range.End)
}

func TestReturns_UnknownSymbol(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/returns/DOGE-USD")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown_symbol", resp.Code)
}

func TestReturns_EmptyRange(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/returns/BTC-USD?start=2030-01-01&end=2030-02-01")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_range", resp.Code)
}

func TestCompare_PanelsAndOrdering(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/compare?base_start=2024-01-01&base_end=2024-01-05&quote_start=2024-01-02&quote_end=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Panels, 2)

	// Base range clamps to the overlap (jan 2..5): BTC 42000->43000 (+2.4%),
	// ETH 2200->2450 (+11.4%), so ETH sorts first.
	assert.Equal(t, "ETH-USD", resp.Panels[0].Symbol)
	assert.Equal(t, "BTC-USD", resp.Panels[1].Symbol)
	assert.GreaterOrEqual(t,
		absFloat(resp.Panels[0].Summary), absFloat(resp.Panels[1].Summary))

	for _, p := range resp.Panels {
		assert.Equal(t, 100.0, p.Returns.Points[0].Value)
		assert.Equal(t, "green", p.Color)
	}

	// Overlap of jan1..5 and jan2..5 is jan2..5.
	assert.Equal(t, "2024-01-02", resp.Bounds.Start)
	assert.Equal(t, "2024-01-05", resp.Bounds.End)
}

func TestCompare_IdenticalRangesAreDeterministic(t *testing.T) {
	server := testServer(t, defaultSource())
	path := "/api/compare?base_start=2024-01-02&base_end=2024-01-05&quote_start=2024-01-02&quote_end=2024-01-05"

	first := get(t, server, path)
	second := get(t, server, path)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b CompareResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Panels, b.Panels)
}

func TestCompare_DefaultsToTrailingWindow(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/compare")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Window is wider than the data, so both panels cover the full overlap.
	for _, p := range resp.Panels {
		assert.Equal(t, resp.Bounds.Start, p.Range.Start)
		assert.Equal(t, resp.Bounds.End, p.Range.End)
	}
}

func TestCompare_UpstreamDown(t *testing.T) {
	source := &stubQuotes{err: errors.New("upstream down")}
	server := testServer(t, source)

	rec := get(t, server, "/api/compare")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSeries_ClipsToRange(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/series/BTC-USD?start=2024-01-02&end=2024-01-03")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SeriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Series.Points, 2)
	assert.Equal(t, 42000.0, resp.Series.Points[0].Price)
}

func TestHealth(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "disabled", resp.Cache.Redis)
	assert.Equal(t, "closed", resp.Providers["stub"])
}

func TestDashboard_RendersChart(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "BTC-USD vs ETH-USD Return Comparison")
	assert.Contains(t, body, "plotly")
	assert.Contains(t, body, `"panels"`)
}

func TestDashboard_FetchFailureShowsErrorState(t *testing.T) {
	source := &stubQuotes{err: errors.New("upstream down")}
	server := testServer(t, source)

	rec := get(t, server, "/")
	require.Equal(t, http.StatusOK, rec.Code, "page must render, not crash")
	assert.Contains(t, rec.Body.String(), "Data not available")
}

func TestNotFound(t *testing.T) {
	server := testServer(t, defaultSource())

	rec := get(t, server, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
