// Package grid implements an intraday range-trading simulator: starting from
// a seeded position, it sells a fixed tranche whenever the price climbs a set
// percentage above the last fill and buys one back whenever it drops the same
// way below, re-anchoring the reference price at every fill.
package grid

import (
	"fmt"
	"time"

	"github.com/mingli/atrader/market"
)

// Side marks a fill as a buy or a sell.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Fill is one executed grid trade, fees included.
type Fill struct {
	Time          time.Time
	Side          Side
	Shares        int64
	Price         float64
	Value         float64
	Commission    float64
	StampDuty     float64
	PositionAfter int64
	CashAfter     float64
}

// Config parameterizes one grid run.
type Config struct {
	// BuyPct and SellPct are the band fractions around the anchor price,
	// e.g. 0.01 for 1% either way.
	BuyPct  float64
	SellPct float64

	// CommissionRate applies to both sides; StampDutyRate to sells only,
	// per A-share convention.
	CommissionRate float64
	StampDutyRate  float64

	// InitialCash is held alongside the seeded position.
	InitialCash float64

	// PositionValue seeds the starting position: floor(PositionValue /
	// basePrice) shares.
	PositionValue float64

	// TradeValue sizes each tranche: floor(TradeValue / basePrice) shares.
	TradeValue float64

	// MaxFillsPerBar caps how many times the band can trigger within a
	// single bar. 0 means the observed default of 2.
	MaxFillsPerBar int
}

// Default mirrors the parameters used in the original runs: 1% bands,
// 0.03% commission, 0.1% stamp duty, a one-million-yuan position seeded next
// to one million in cash, traded in ten-thousand-yuan tranches.
func Default() Config {
	return Config{
		BuyPct:         0.01,
		SellPct:        0.01,
		CommissionRate: 0.0003,
		StampDutyRate:  0.001,
		InitialCash:    1_000_000,
		PositionValue:  1_000_000,
		TradeValue:     10_000,
		MaxFillsPerBar: 2,
	}
}

// Validate rejects degenerate configurations before a run begins.
func (c Config) Validate() error {
	if c.BuyPct <= 0 || c.SellPct <= 0 {
		return fmt.Errorf("grid: band percents must be positive, got buy %.4f sell %.4f", c.BuyPct, c.SellPct)
	}
	if c.CommissionRate < 0 || c.StampDutyRate < 0 {
		return fmt.Errorf("grid: fee rates must be non-negative")
	}
	if c.InitialCash <= 0 {
		return fmt.Errorf("grid: initial cash must be positive, got %.2f", c.InitialCash)
	}
	if c.PositionValue <= 0 || c.TradeValue <= 0 {
		return fmt.Errorf("grid: position and trade values must be positive")
	}
	if c.MaxFillsPerBar < 0 {
		return fmt.Errorf("grid: max fills per bar must be non-negative, got %d", c.MaxFillsPerBar)
	}
	return nil
}

// Result is the outcome of one grid run.
type Result struct {
	Fills []Fill

	BuyCount        int
	SellCount       int
	TotalCommission float64
	TotalStampDuty  float64

	InitialPosition    int64
	InitialMarketValue float64
	InitialTotalAssets float64

	FinalPosition    int64
	FinalCash        float64
	FinalPrice       float64
	FinalMarketValue float64
	FinalTotalAssets float64

	// AssetChange is the total-asset delta net of all fees paid.
	AssetChange float64
}

// Engine replays intraday bars through the grid. Like the crossover engine it
// is a pure fold: configuration errors surface in New, Run never fails.
type Engine struct {
	cfg Config
}

func New(cfg Config) (*Engine, error) {
	if cfg.MaxFillsPerBar == 0 {
		cfg.MaxFillsPerBar = 2
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Run replays the bars against the grid, anchored at basePrice, normally the
// previous session's close. An empty bar sequence returns the seeded state
// with no fills.
func (e *Engine) Run(basePrice float64, bars []market.Bar) Result {
	cfg := e.cfg

	position := int64(cfg.PositionValue / basePrice)
	tranche := int64(cfg.TradeValue / basePrice)
	cash := cfg.InitialCash

	res := Result{
		InitialPosition:    position,
		InitialMarketValue: basePrice * float64(position),
	}
	res.InitialTotalAssets = res.InitialMarketValue + cash

	price := basePrice
	lastFill := -1

	for i, b := range bars {
		for fills := 0; fills < cfg.MaxFillsPerBar; fills++ {
			if f, ok := e.trySell(&position, &cash, tranche, price, b); ok {
				res.Fills = append(res.Fills, f)
				res.SellCount++
				res.TotalCommission += f.Commission
				res.TotalStampDuty += f.StampDuty
				price = f.Price
				lastFill = i
				continue
			}
			if f, ok := e.tryBuy(&position, &cash, tranche, price, b); ok {
				res.Fills = append(res.Fills, f)
				res.BuyCount++
				res.TotalCommission += f.Commission
				price = f.Price
				lastFill = i
				continue
			}
			break
		}
	}

	// Value the final book at the close of the last bar that filled, falling
	// back to the final bar when nothing traded.
	switch {
	case lastFill >= 0:
		res.FinalPrice = bars[lastFill].Close
	case len(bars) > 0:
		res.FinalPrice = bars[len(bars)-1].Close
	default:
		res.FinalPrice = basePrice
	}

	res.FinalPosition = position
	res.FinalCash = cash
	res.FinalMarketValue = res.FinalPrice * float64(position)
	res.FinalTotalAssets = res.FinalMarketValue + cash
	res.AssetChange = res.FinalTotalAssets - res.InitialTotalAssets - res.TotalCommission - res.TotalStampDuty

	return res
}

func (e *Engine) trySell(position *int64, cash *float64, tranche int64, price float64, b market.Bar) (Fill, bool) {
	target := price * (1 + e.cfg.SellPct)
	if *position < tranche || b.High < target {
		return Fill{}, false
	}

	value := target * float64(tranche)
	commission := value * e.cfg.CommissionRate
	stampDuty := value * e.cfg.StampDutyRate

	*cash += value - commission - stampDuty
	*position -= tranche

	return Fill{
		Time:          b.Time,
		Side:          SideSell,
		Shares:        tranche,
		Price:         target,
		Value:         value,
		Commission:    commission,
		StampDuty:     stampDuty,
		PositionAfter: *position,
		CashAfter:     *cash,
	}, true
}

func (e *Engine) tryBuy(position *int64, cash *float64, tranche int64, price float64, b market.Bar) (Fill, bool) {
	target := price * (1 - e.cfg.BuyPct)
	if b.Low > target {
		return Fill{}, false
	}

	value := target * float64(tranche)
	commission := value * e.cfg.CommissionRate
	if *cash < value+commission {
		// Insufficient cash is a no-op, consistent with the crossover engine.
		return Fill{}, false
	}

	*cash -= value + commission
	*position += tranche

	return Fill{
		Time:          b.Time,
		Side:          SideBuy,
		Shares:        tranche,
		Price:         target,
		Value:         value,
		Commission:    commission,
		PositionAfter: *position,
		CashAfter:     *cash,
	}, true
}
