package backtest

import (
	"math"
	"time"

	"github.com/mingli/atrader/indicators"
	"github.com/mingli/atrader/market"
)

// Side marks a transaction as a buy or a sell.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Transaction is one executed fill. The ordered transaction list is the
// engine's primary output alongside the final Position.
type Transaction struct {
	Time      time.Time
	Side      Side
	Shares    int64
	Price     float64
	CashAfter float64
}

// Position is the engine's simulation state for one instrument.
//
// Invariants: Shares == 0 implies EntryPrice is nil; Shares > 0 implies
// EntryPrice is set and Cash >= 0.
type Position struct {
	Cash              float64
	Shares            int64
	EntryPrice        *float64
	ConsecutiveLosses int
	CooldownUntil     *time.Time
}

// Engine replays a bar sequence against one entry rule and one exit rule.
// It is a deterministic fold over in-memory bars: no I/O, no suspension
// points, and no shared state, so independent instruments can run on
// separate engine instances concurrently without locking.
type Engine struct {
	cfg Config
}

// NewEngine normalizes and validates the configuration. Configuration is the
// only thing that can fail; Run itself never errors.
func NewEngine(cfg Config) (*Engine, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() Config { return e.cfg }

// Run replays the bars in order and returns the transaction log plus the
// final position. Bars are assumed validated (market.ValidateBars) by the
// caller; a sequence shorter than the long window yields zero transactions
// and a final state equal to the initial state.
func (e *Engine) Run(bars []market.Bar) Result {
	cfg := e.cfg

	pos := Position{Cash: cfg.InitialBalance}
	var txs []Transaction

	shortMA := indicators.SMASeries(bars, cfg.ShortWindow)
	longMA := indicators.SMASeries(bars, cfg.LongWindow)

	// With lag confirmation the cross is read one bar earlier than it is
	// acted on.
	lag := 0
	if cfg.ConfirmLag {
		lag = 1
	}

	for i := 1; i < len(bars); i++ {
		bar := bars[i]

		// An active cooldown suppresses all trading on this bar, exits
		// included.
		if pos.CooldownUntil != nil && !bar.Time.After(*pos.CooldownUntil) {
			continue
		}

		if pos.Shares == 0 {
			prev, curr := i-1-lag, i-lag
			if prev >= 0 && crossedUp(shortMA, longMA, prev, curr) {
				e.enter(&pos, &txs, bar)
			}
			continue
		}

		e.maybeExit(&pos, &txs, bar)
	}

	return newResult(cfg, txs, pos, market.LastClose(bars))
}

// enter buys at the bar's open with every lot the cash can cover. Too little
// cash for one lot is a silent no-op, never an error.
func (e *Engine) enter(pos *Position, txs *[]Transaction, bar market.Bar) {
	entry := bar.Open
	shares := int64(pos.Cash / entry)
	shares = shares / int64(e.cfg.LotSize) * int64(e.cfg.LotSize)
	if shares <= 0 {
		return
	}

	pos.Cash -= float64(shares) * entry
	pos.Shares = shares
	pos.EntryPrice = &entry

	*txs = append(*txs, Transaction{
		Time:      bar.Time,
		Side:      SideBuy,
		Shares:    shares,
		Price:     entry,
		CashAfter: pos.Cash,
	})
}

// maybeExit closes the position when the bar touches either side of the
// percentage band around the entry price. The fill models a limit order at
// the configured target: the exit price is the band edge, not the bar's
// actual extreme. When both edges are touched in the same bar the
// take-profit leg wins.
func (e *Engine) maybeExit(pos *Position, txs *[]Transaction, bar market.Bar) {
	entry := *pos.EntryPrice
	target := entry * (1 + e.cfg.TakeProfitPct)
	stop := entry * (1 - e.cfg.StopLossPct)

	var exit float64
	switch {
	case bar.High >= target:
		exit = target
	case bar.Low <= stop:
		exit = stop
	default:
		return
	}

	pos.Cash += float64(pos.Shares) * exit
	shares := pos.Shares
	pos.Shares = 0
	pos.EntryPrice = nil

	*txs = append(*txs, Transaction{
		Time:      bar.Time,
		Side:      SideSell,
		Shares:    shares,
		Price:     exit,
		CashAfter: pos.Cash,
	})

	if exit < entry {
		pos.ConsecutiveLosses++
		if pos.ConsecutiveLosses >= 2 && e.cfg.CooldownDays > 0 {
			until := bar.Time.AddDate(0, 0, e.cfg.CooldownDays)
			pos.CooldownUntil = &until
		}
	} else {
		pos.ConsecutiveLosses = 0
	}
}

// crossedUp reports a bullish crossover between two aligned SMA points: the
// short average moves from at-or-below to strictly above the long average.
func crossedUp(short, long []float64, prev, curr int) bool {
	if math.IsNaN(short[prev]) || math.IsNaN(long[prev]) ||
		math.IsNaN(short[curr]) || math.IsNaN(long[curr]) {
		return false
	}
	return short[prev] <= long[prev] && short[curr] > long[curr]
}
