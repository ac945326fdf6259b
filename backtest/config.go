package backtest

import "fmt"

// Config holds every parameter of one crossover backtest. The near-identical
// rule variants (window lengths, band percentages, lag confirmation, cooldown)
// all collapse into this one struct.
type Config struct {
	// ShortWindow and LongWindow are the SMA periods. Reversed values are
	// swapped by Normalize rather than rejected.
	ShortWindow int
	LongWindow  int

	InitialBalance float64

	// TakeProfitPct and StopLossPct define the exit band around the entry
	// price, e.g. 0.10 and 0.05.
	TakeProfitPct float64
	StopLossPct   float64

	// LotSize floor-rounds share quantities to a multiple; 1 disables
	// rounding. A-share board lots are 100.
	LotSize int

	// CooldownDays blocks new entries for this many calendar days after two
	// consecutive losing trades. 0 disables the cooldown entirely.
	CooldownDays int

	// ConfirmLag acts on the crossover one bar late: the cross between the
	// bar two back and one back triggers a buy at the current bar's open.
	ConfirmLag bool
}

// Default returns the parameters observed across all the rule variants:
// 20/50 SMAs, 100k starting balance, +10%/-5% exit band, 100-share lots and a
// 60-day cooldown.
func Default() Config {
	return Config{
		ShortWindow:    20,
		LongWindow:     50,
		InitialBalance: 100_000,
		TakeProfitPct:  0.10,
		StopLossPct:    0.05,
		LotSize:        100,
		CooldownDays:   60,
	}
}

// Normalize swaps reversed windows and defaults a missing lot size to 1.
func (c *Config) Normalize() {
	if c.ShortWindow > c.LongWindow {
		c.ShortWindow, c.LongWindow = c.LongWindow, c.ShortWindow
	}
	if c.LotSize < 1 {
		c.LotSize = 1
	}
}

// Validate rejects degenerate configurations before a run begins. It expects
// a normalized config.
func (c Config) Validate() error {
	if c.ShortWindow <= 0 || c.LongWindow <= 0 {
		return fmt.Errorf("backtest: windows must be positive, got %d and %d", c.ShortWindow, c.LongWindow)
	}
	if c.ShortWindow == c.LongWindow {
		return fmt.Errorf("backtest: short and long windows must differ, got %d", c.ShortWindow)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("backtest: initial balance must be positive, got %.2f", c.InitialBalance)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("backtest: take-profit percent must be positive, got %.4f", c.TakeProfitPct)
	}
	if c.StopLossPct <= 0 {
		return fmt.Errorf("backtest: stop-loss percent must be positive, got %.4f", c.StopLossPct)
	}
	if c.CooldownDays < 0 {
		return fmt.Errorf("backtest: cooldown days must be non-negative, got %d", c.CooldownDays)
	}
	return nil
}
