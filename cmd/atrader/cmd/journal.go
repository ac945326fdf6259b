package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mingli/atrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect a SQLite run journal",
	Long: `Journal lists recorded backtest runs, or the transactions of one run.

Examples:
  atrader journal --db atrader.sqlite
  atrader journal --db atrader.sqlite --run 01J8ZQ2M3N...`,
	RunE: runJournal,
}

var (
	journalDBPath string
	journalRunID  string
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalDBPath, "db", "d", "./atrader.sqlite", "path to SQLite journal")
	journalCmd.Flags().StringVarP(&journalRunID, "run", "r", "", "show transactions for one run ID")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	if journalRunID != "" {
		txs, err := j.ListTransactions(journalRunID)
		if err != nil {
			return err
		}
		for _, t := range txs {
			fmt.Printf("%s  %s %-4s %8d @ %.2f  cash %.2f\n",
				t.Time.Format("2006-01-02"), t.Symbol, t.Side, t.Shares, t.Price, t.CashAfter)
		}
		return nil
	}

	runs, err := j.ListRuns()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s %-10s %s  P/L %10.2f  W/L %d/%d\n",
			r.RunID, r.Symbol, r.Name, r.Strategy, r.ProfitLoss, r.Wins, r.Losses)
	}
	return nil
}
