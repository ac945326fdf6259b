// Package feed supplies historical bars to the engines. Sources succeed or
// fail as a whole for a requested range; retry, rate limiting and symbol
// normalization live here so the engines never see them.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/mingli/atrader/market"
)

// ErrNoData reports that a source returned no bars for the requested range.
// Callers use it to distinguish "could not obtain data" from a legitimate
// zero-trade backtest.
var ErrNoData = errors.New("feed: no data for requested range")

// Source yields the ordered bar history of one instrument over [start, end].
type Source interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)

func (f SourceFunc) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	return f(ctx, symbol, start, end)
}
