package strategies

import "github.com/mingli/atrader/market"

// Signal is a strategy's per-bar trading decision.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Decision carries a signal plus the reasoning context that produced it.
type Decision struct {
	Signal Signal
	Reason string

	Short float64
	Long  float64
	Close float64
}

// Strategy is called once per closed bar and returns a decision.
// Implementations must be deterministic: the same bar sequence always
// produces the same decisions.
type Strategy interface {
	Name() string
	Reset()
	Ready() bool
	Update(b market.Bar) Decision
}
