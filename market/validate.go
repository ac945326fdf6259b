package market

import "fmt"

// ValidateBars checks the boundary preconditions the backtest engine assumes:
// strictly increasing timestamps with no duplicates, positive prices, and
// low <= open,close <= high within each bar.
//
// Validation happens once at the boundary; the engine itself never re-checks
// bar data mid-run.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if b.Low <= 0 || b.High <= 0 || b.Open <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): non-positive price", i, b.Time.Format("2006-01-02"))
		}
		if b.Low > b.High {
			return fmt.Errorf("bar %d (%s): low %.4f above high %.4f", i, b.Time.Format("2006-01-02"), b.Low, b.High)
		}
		if b.Open < b.Low || b.Open > b.High {
			return fmt.Errorf("bar %d (%s): open %.4f outside [low, high]", i, b.Time.Format("2006-01-02"), b.Open)
		}
		if b.Close < b.Low || b.Close > b.High {
			return fmt.Errorf("bar %d (%s): close %.4f outside [low, high]", i, b.Time.Format("2006-01-02"), b.Close)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d (%s): timestamp not after previous bar", i, b.Time.Format("2006-01-02"))
		}
	}
	return nil
}
