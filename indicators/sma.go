package indicators

import (
	"fmt"
	"math"

	"github.com/mingli/atrader/market"
)

// SMA is a streaming simple moving average over the trailing `period` closes.
type SMA struct {
	period int
	window []float64
	sum    float64
}

// NewSMA creates a simple moving average indicator with the given period.
func NewSMA(period int) *SMA {
	if period <= 0 {
		panic(fmt.Sprintf("SMA period must be positive, got %d", period))
	}
	return &SMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SMA) Warmup() int {
	return m.period
}

func (m *SMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *SMA) Update(b market.Bar) {
	m.window = append(m.window, b.Close)
	m.sum += b.Close
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *SMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(len(m.window))
}

// SMASeries computes the trailing simple mean of Close over `window` bars,
// aligned per bar. Entries before the window fills are NaN, matching the
// rolling-mean convention where the first window-1 values are undefined.
func SMASeries(bars []market.Bar, window int) []float64 {
	out := make([]float64, len(bars))
	sum := 0.0
	for i, b := range bars {
		sum += b.Close
		if i >= window {
			sum -= bars[i-window].Close
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
