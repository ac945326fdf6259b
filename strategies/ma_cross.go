package strategies

import (
	"fmt"

	"github.com/mingli/atrader/indicators"
	"github.com/mingli/atrader/market"
)

// MACross generates signals when a short SMA crosses a long SMA.
// A bullish cross is the short average moving from at-or-below to strictly
// above the long average between two consecutive bars; a bearish cross is the
// reverse. Signals fire only on the cross event, not on every bar while the
// averages stay crossed.
type MACross struct {
	short *indicators.SMA
	long  *indicators.SMA
	name  string

	// prevAbove tracks the relation on the previous bar; the first bar where
	// both averages are ready only establishes the baseline and never fires.
	prevAbove   bool
	prevDefined bool

	// confirmLag defers each cross event by one bar, so callers act on the
	// bar after the cross rather than the cross bar itself.
	confirmLag bool
	pending    Decision
	hasPending bool
}

type MACrossConfig struct {
	ShortWindow int
	LongWindow  int

	// ConfirmLag emits the cross signal one bar late (the cross between the
	// bar two back and one back, acted on the current bar).
	ConfirmLag bool
}

// NewMACross builds the crossover strategy. Reversed windows are swapped
// rather than rejected; equal or non-positive windows are a caller bug.
func NewMACross(cfg MACrossConfig) (*MACross, error) {
	s, l := cfg.ShortWindow, cfg.LongWindow
	if s > l {
		s, l = l, s
	}
	if s <= 0 {
		return nil, fmt.Errorf("ma-cross: windows must be positive, got %d and %d", cfg.ShortWindow, cfg.LongWindow)
	}
	if s == l {
		return nil, fmt.Errorf("ma-cross: windows must differ, got %d and %d", cfg.ShortWindow, cfg.LongWindow)
	}

	return &MACross{
		short:      indicators.NewSMA(s),
		long:       indicators.NewSMA(l),
		confirmLag: cfg.ConfirmLag,
		name:       fmt.Sprintf("MA_CROSS(%d,%d)", s, l),
	}, nil
}

func (x *MACross) Name() string { return x.name }

func (x *MACross) Reset() {
	x.short.Reset()
	x.long.Reset()
	x.prevDefined = false
	x.hasPending = false
}

func (x *MACross) Ready() bool {
	return x.short.Ready() && x.long.Ready()
}

// Warmup returns the number of bars needed before a signal can fire: the long
// window plus the baseline bar, plus one more when lag confirmation is on.
func (x *MACross) Warmup() int {
	w := x.long.Warmup() + 1
	if x.confirmLag {
		w++
	}
	return w
}

func (x *MACross) Update(b market.Bar) Decision {
	x.short.Update(b)
	x.long.Update(b)

	cur := Decision{Signal: Hold, Close: b.Close}

	if !x.Ready() {
		cur.Reason = "warming up"
		return x.emit(cur)
	}

	sv := x.short.Value()
	lv := x.long.Value()
	cur.Short = sv
	cur.Long = lv
	above := sv > lv

	switch {
	case !x.prevDefined:
		cur.Reason = "baseline set"
	case !x.prevAbove && above:
		cur.Signal = Buy
		cur.Reason = "short SMA crossed above long SMA"
	case x.prevAbove && !above:
		cur.Signal = Sell
		cur.Reason = "short SMA crossed below long SMA"
	default:
		cur.Reason = "no cross"
	}

	x.prevAbove = above
	x.prevDefined = true

	return x.emit(cur)
}

// emit applies the one-bar lag: the decision computed on this bar is held
// back and the previous bar's decision is returned instead.
func (x *MACross) emit(cur Decision) Decision {
	if !x.confirmLag {
		return cur
	}

	out := Decision{Signal: Hold, Reason: "warming up", Close: cur.Close}
	if x.hasPending {
		out = x.pending
		out.Close = cur.Close
	}
	x.pending = cur
	x.hasPending = true
	return out
}
