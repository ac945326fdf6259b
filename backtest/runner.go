package backtest

import (
	"context"
	"runtime"
	"sync"

	"github.com/mingli/atrader/market"
)

// Instrument pairs an instrument's metadata with its bar history.
type Instrument struct {
	Meta market.InstrumentMeta
	Bars []market.Bar
}

// InstrumentResult is one instrument's outcome within a portfolio run.
type InstrumentResult struct {
	Meta   market.InstrumentMeta
	Result Result
}

// Portfolio aggregates one strategy's results across many instruments.
type Portfolio struct {
	Results []InstrumentResult

	TotalCash       float64
	TotalStockValue float64
	TotalValue      float64

	NumInstruments int
	NumProfitable  int
	NumLosing      int
	WinRate        float64 // percent of instruments that ended profitable
	AvgProfit      float64
	AvgLoss        float64
}

// Runner executes one configuration against many instruments, one engine
// instance per instrument. Each engine owns its position exclusively, so the
// runs are embarrassingly parallel.
type Runner struct {
	Config Config

	// Workers bounds concurrent engine runs. <= 0 means GOMAXPROCS.
	Workers int
}

// Run backtests every instrument and aggregates the portfolio summary.
// Results keep the input instrument order regardless of scheduling.
func (r *Runner) Run(ctx context.Context, instruments []Instrument) (Portfolio, error) {
	engine, err := NewEngine(r.Config)
	if err != nil {
		return Portfolio{}, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]InstrumentResult, len(instruments))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, inst := range instruments {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, inst Instrument) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = InstrumentResult{
				Meta:   inst.Meta,
				Result: engine.Run(inst.Bars),
			}
		}(i, inst)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Portfolio{}, err
	}

	return summarize(results), nil
}

func summarize(results []InstrumentResult) Portfolio {
	p := Portfolio{
		Results:        results,
		NumInstruments: len(results),
	}

	var totalProfit, totalLoss float64
	for _, ir := range results {
		p.TotalCash += ir.Result.Position.Cash
		p.TotalStockValue += ir.Result.MarkToMarket

		if pl := ir.Result.ProfitLoss; pl > 0 {
			p.NumProfitable++
			totalProfit += pl
		} else {
			p.NumLosing++
			totalLoss += pl
		}
	}

	p.TotalValue = p.TotalCash + p.TotalStockValue
	if p.NumProfitable > 0 {
		p.AvgProfit = totalProfit / float64(p.NumProfitable)
	}
	if p.NumLosing > 0 {
		p.AvgLoss = totalLoss / float64(p.NumLosing)
	}
	if p.NumInstruments > 0 {
		p.WinRate = float64(p.NumProfitable) / float64(p.NumInstruments) * 100
	}
	return p
}
