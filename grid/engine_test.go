package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mingli/atrader/market"
)

func minuteBar(m int, o, h, l, c float64) market.Bar {
	start := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)
	return market.Bar{Time: start.Add(time.Duration(m) * time.Minute), Open: o, High: h, Low: l, Close: c}
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero buy band", func(c *Config) { c.BuyPct = 0 }},
		{"zero sell band", func(c *Config) { c.SellPct = 0 }},
		{"negative commission", func(c *Config) { c.CommissionRate = -0.1 }},
		{"zero cash", func(c *Config) { c.InitialCash = 0 }},
		{"zero trade value", func(c *Config) { c.TradeValue = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
		})
	}
}

func TestEngine_SellThenBuyWithinOneBar(t *testing.T) {
	e := mustEngine(t, Default())

	// Base 10.00 seeds 100k shares and 1k-share tranches. The bar's high
	// touches the 10.10 sell level; after re-anchoring at 10.10 the low
	// touches the 9.999 buy level.
	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 10.0, 10.2, 9.95, 10.15),
		minuteBar(1, 10.0, 10.05, 9.99, 10.0),
	})

	require.Equal(t, int64(100_000), res.InitialPosition)
	require.InDelta(t, 2_000_000, res.InitialTotalAssets, 1e-6)

	require.Len(t, res.Fills, 2)
	require.Equal(t, 1, res.SellCount)
	require.Equal(t, 1, res.BuyCount)

	sell := res.Fills[0]
	require.Equal(t, SideSell, sell.Side)
	require.Equal(t, int64(1000), sell.Shares)
	require.InDelta(t, 10.10, sell.Price, 1e-9)
	require.InDelta(t, 10_100, sell.Value, 1e-6)
	require.InDelta(t, 3.03, sell.Commission, 1e-6)
	require.InDelta(t, 10.10, sell.StampDuty, 1e-6)
	require.Equal(t, int64(99_000), sell.PositionAfter)

	buy := res.Fills[1]
	require.Equal(t, SideBuy, buy.Side)
	require.InDelta(t, 10.10*0.99, buy.Price, 1e-9)
	require.Equal(t, int64(100_000), buy.PositionAfter)
	require.Zero(t, buy.StampDuty, "stamp duty applies to sells only")

	require.InDelta(t, sell.Commission+buy.Commission, res.TotalCommission, 1e-9)
	require.InDelta(t, sell.StampDuty, res.TotalStampDuty, 1e-9)

	// Final book valued at the close of the last bar that filled.
	require.InDelta(t, 10.15, res.FinalPrice, 1e-9)
	require.Equal(t, int64(100_000), res.FinalPosition)
}

func TestEngine_NoFillsInsideBand(t *testing.T) {
	e := mustEngine(t, Default())

	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 10.0, 10.05, 9.96, 10.0),
		minuteBar(1, 10.0, 10.09, 9.92, 10.0),
	})

	require.Empty(t, res.Fills)
	require.Equal(t, res.InitialPosition, res.FinalPosition)
	require.InDelta(t, 10.0, res.FinalPrice, 1e-9, "falls back to the last bar close")
	require.InDelta(t, 0, res.AssetChange, 1e-6)
}

func TestEngine_MaxFillsPerBar(t *testing.T) {
	cfg := Default()
	cfg.MaxFillsPerBar = 3
	e := mustEngine(t, cfg)

	// A runaway bar: 10.10, 10.201 and 10.30301 sell levels are all inside
	// the high, so exactly MaxFillsPerBar sells execute.
	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 10.0, 10.5, 10.0, 10.4),
	})

	require.Equal(t, 3, res.SellCount)
	require.Equal(t, 0, res.BuyCount)

	capped := mustEngine(t, Default())
	res = capped.Run(10.0, []market.Bar{minuteBar(0, 10.0, 10.5, 10.0, 10.4)})
	require.Equal(t, 2, res.SellCount)
}

func TestEngine_SellRequiresFullTranche(t *testing.T) {
	cfg := Default()
	cfg.PositionValue = 5_000 // seeds fewer shares than one tranche
	e := mustEngine(t, cfg)

	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 10.0, 10.5, 10.0, 10.4),
	})

	require.Equal(t, 0, res.SellCount)
}

func TestEngine_BuyRequiresCash(t *testing.T) {
	cfg := Default()
	cfg.InitialCash = 50 // cannot afford one tranche
	e := mustEngine(t, cfg)

	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 9.8, 9.9, 9.5, 9.6),
	})

	require.Equal(t, 0, res.BuyCount)
	require.Equal(t, 50.0, res.FinalCash)
}

func TestEngine_EmptyBars(t *testing.T) {
	e := mustEngine(t, Default())
	res := e.Run(10.0, nil)

	require.Empty(t, res.Fills)
	require.InDelta(t, 10.0, res.FinalPrice, 1e-9)
	require.Equal(t, res.InitialTotalAssets, res.FinalTotalAssets)
}

func TestEngine_FeesReduceAssetChange(t *testing.T) {
	e := mustEngine(t, Default())

	// One sell and one buy back at a lower price: the round trip is price
	// neutral by construction, so the asset change nets out around the fees.
	res := e.Run(10.0, []market.Bar{
		minuteBar(0, 10.0, 10.2, 9.95, 10.0),
	})

	require.Equal(t, 2, len(res.Fills))
	require.Greater(t, res.TotalCommission, 0.0)
	require.Greater(t, res.TotalStampDuty, 0.0)

	gross := res.FinalTotalAssets - res.InitialTotalAssets
	require.InDelta(t, gross-res.TotalCommission-res.TotalStampDuty, res.AssetChange, 1e-9)
}
