package market

import "time"

// Bar represents one trading period's OHLCV data for a single instrument.
// Bars are produced by a feed.Source and are never mutated by consumers.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64 // shares traded; 0 when the source has no volume column
}

// Range returns the bar's high-low span.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// LastClose returns the close of the final bar, or 0 for an empty series.
// Used for mark-to-market valuation of still-open positions.
func LastClose(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}
