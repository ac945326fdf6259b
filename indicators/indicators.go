// Package indicators provides the technical indicators used by the strategies.
package indicators

import "github.com/mingli/atrader/market"

// Indicator computes a single streaming value from closed bars.
// Implementations are deterministic so the same bar sequence always
// reproduces the same values in replay and backtests.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)".
	Name() string

	// Warmup returns how many bars are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current indicator value; callers must check Ready().
	Value() float64
}
