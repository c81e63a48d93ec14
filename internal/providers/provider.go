// Package providers contains the upstream price-history clients and the
// fallback chain that arbitrates between them.
package providers

import (
	"context"
	"errors"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

var (
	// ErrNoData means the upstream answered but carried no usable bars.
	ErrNoData = errors.New("provider returned no data")
	// ErrUnknownSymbol means the provider has no mapping for the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Quotes fetches the full daily close history for one asset.
type Quotes interface {
	Name() string
	DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error)
}
