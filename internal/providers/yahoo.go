package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

const yahooDefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooConfig configures the Yahoo Finance chart client.
type YahooConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

// Yahoo fetches daily history from the Yahoo Finance v8 chart API. Symbols
// like BTC-USD and ETH-USD are native Yahoo tickers, no mapping needed.
type Yahoo struct {
	baseURL string
	client  *http.Client
	limiter *HostLimiter
}

// NewYahoo creates a Yahoo Finance client.
func NewYahoo(cfg YahooConfig) *Yahoo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = yahooDefaultBaseURL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 2
	}
	if cfg.Burst == 0 {
		cfg.Burst = 4
	}
	return &Yahoo{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: NewHostLimiter(cfg.RPS, cfg.Burst),
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// yahooChart mirrors the chart API response shape. Close values arrive as
// nullable numbers, so they decode into *float64.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyHistory fetches the full daily close history for symbol.
func (y *Yahoo) DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=max",
		y.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if err := y.limiter.Wait(ctx, req.URL.Host); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("yahoo rate limit: %w", err)
	}

	start := time.Now()
	resp, err := y.client.Do(req)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.PriceSeries{}, fmt.Errorf("yahoo %s: HTTP %d", symbol, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return domain.PriceSeries{}, fmt.Errorf("yahoo %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]domain.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(ts, 0),
			Price: *closes[i],
		})
	}

	series := domain.NewPriceSeries(symbol, points)
	if series.Empty() {
		return domain.PriceSeries{}, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	log.Debug().
		Str("provider", "yahoo").
		Str("symbol", symbol).
		Int("points", len(series.Points)).
		Dur("duration", time.Since(start)).
		Msg("daily history fetched")

	return series, nil
}
