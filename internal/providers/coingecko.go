package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

const coinGeckoDefaultBaseURL = "https://api.coingecko.com/api/v3"

// coinGeckoIDs maps dashboard symbols to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"BTC-USD": "bitcoin",
	"ETH-USD": "ethereum",
}

// CoinGeckoConfig configures the CoinGecko fallback client.
type CoinGeckoConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

// CoinGecko fetches daily history from the CoinGecko market_chart endpoint.
// It backs up Yahoo when the primary is erroring or tripped.
type CoinGecko struct {
	baseURL string
	client  *http.Client
	limiter *HostLimiter
	ids     map[string]string
}

// NewCoinGecko creates a CoinGecko client. The free tier allows roughly 10-30
// calls per minute, hence the conservative default limit.
func NewCoinGecko(cfg CoinGeckoConfig) *CoinGecko {
	if cfg.BaseURL == "" {
		cfg.BaseURL = coinGeckoDefaultBaseURL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 0.2
	}
	if cfg.Burst == 0 {
		cfg.Burst = 2
	}
	return &CoinGecko{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: NewHostLimiter(cfg.RPS, cfg.Burst),
		ids:     coinGeckoIDs,
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

// marketChart mirrors the market_chart response: prices is a list of
// [unix_millis, price] pairs.
type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// DailyHistory fetches the full daily close history for symbol.
func (c *CoinGecko) DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	id, ok := c.ids[symbol]
	if !ok {
		return domain.PriceSeries{}, fmt.Errorf("coingecko %s: %w", symbol, ErrUnknownSymbol)
	}

	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=max&interval=daily",
		c.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("coingecko rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("coingecko fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PriceSeries{}, fmt.Errorf("coingecko %s: HTTP %d", symbol, resp.StatusCode)
	}

	var chart marketChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("coingecko decode: %w", err)
	}
	if len(chart.Prices) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("coingecko %s: %w", symbol, ErrNoData)
	}

	points := make([]domain.PricePoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		points = append(points, domain.PricePoint{
			Date:  time.UnixMilli(int64(pair[0])),
			Price: pair[1],
		})
	}

	series := domain.NewPriceSeries(symbol, points)
	if series.Empty() {
		return domain.PriceSeries{}, fmt.Errorf("coingecko %s: %w", symbol, ErrNoData)
	}

	log.Debug().
		Str("provider", "coingecko").
		Str("symbol", symbol).
		Int("points", len(series.Points)).
		Dur("duration", time.Since(start)).
		Msg("daily history fetched")

	return series, nil
}
