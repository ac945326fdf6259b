package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mingli/atrader/market"
)

func mkBars(closes []float64) []market.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func collectSignals(s *MACross, bars []market.Bar) []Decision {
	out := make([]Decision, 0, 8)
	for _, b := range bars {
		d := s.Update(b)
		if d.Signal != Hold {
			out = append(out, d)
		}
	}
	return out
}

// crossCloses warms up in a downtrend (short below long), then trends up
// through a bullish cross, then back down through a bearish cross.
func crossCloses() []float64 {
	closes := make([]float64, 0, 64)
	p := 20.0
	for i := 0; i < 12; i++ {
		p -= 0.2
		closes = append(closes, p)
	}
	for i := 0; i < 15; i++ {
		p += 0.5
		closes = append(closes, p)
	}
	for i := 0; i < 15; i++ {
		p -= 0.5
		closes = append(closes, p)
	}
	return closes
}

func TestMACross_SwapsReversedWindows(t *testing.T) {
	s, err := NewMACross(MACrossConfig{ShortWindow: 5, LongWindow: 3})
	require.NoError(t, err)
	require.Equal(t, "MA_CROSS(3,5)", s.Name())
}

func TestMACross_RejectsDegenerateWindows(t *testing.T) {
	_, err := NewMACross(MACrossConfig{ShortWindow: 5, LongWindow: 5})
	require.Error(t, err)

	_, err = NewMACross(MACrossConfig{ShortWindow: 0, LongWindow: 5})
	require.Error(t, err)

	_, err = NewMACross(MACrossConfig{ShortWindow: -2, LongWindow: 5})
	require.Error(t, err)
}

func TestMACross_WarmupNoSignals(t *testing.T) {
	s, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5})
	require.NoError(t, err)

	events := collectSignals(s, mkBars([]float64{10, 10.1, 10.2, 10.3}))
	require.Len(t, events, 0)
}

func TestMACross_BuyThenSell(t *testing.T) {
	s, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5})
	require.NoError(t, err)

	events := collectSignals(s, mkBars(crossCloses()))
	require.GreaterOrEqual(t, len(events), 2)
	require.Equal(t, Buy, events[0].Signal)

	foundSell := false
	for _, e := range events[1:] {
		if e.Signal == Sell {
			foundSell = true
		}
	}
	require.True(t, foundSell, "expected a SELL after the BUY")
}

func TestMACross_ConfirmLagDelaysByOneBar(t *testing.T) {
	bars := mkBars(crossCloses())

	plain, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5})
	require.NoError(t, err)
	lagged, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5, ConfirmLag: true})
	require.NoError(t, err)

	var plainIdx, lagIdx []int
	for i, b := range bars {
		if plain.Update(b).Signal == Buy {
			plainIdx = append(plainIdx, i)
		}
		if lagged.Update(b).Signal == Buy {
			lagIdx = append(lagIdx, i)
		}
	}

	require.NotEmpty(t, plainIdx)
	require.NotEmpty(t, lagIdx)
	require.Equal(t, plainIdx[0]+1, lagIdx[0], "lagged BUY should fire one bar later")
}

func TestMACross_Deterministic(t *testing.T) {
	bars := mkBars(crossCloses())

	run := func() []Decision {
		s, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5})
		require.NoError(t, err)
		return collectSignals(s, bars)
	}

	require.Equal(t, run(), run())
}

func TestMACross_ResetClearsState(t *testing.T) {
	bars := mkBars(crossCloses())

	s, err := NewMACross(MACrossConfig{ShortWindow: 3, LongWindow: 5, ConfirmLag: true})
	require.NoError(t, err)

	first := collectSignals(s, bars)
	s.Reset()
	second := collectSignals(s, bars)
	require.Equal(t, first, second)
}
