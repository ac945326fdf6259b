package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mingli/atrader/market"
)

// csvHeader is the on-disk bar layout, matching the daily kline column order
// of the upstream provider.
var csvHeader = []string{"date", "open", "close", "high", "low", "volume"}

const csvDateLayout = "2006-01-02"

// CSVSource reads bar files written by WriteCSV. The symbol is mapped to
// <dir>/<symbol>.csv.
type CSVSource struct {
	Dir string
}

func (s *CSVSource) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	path := fmt.Sprintf("%s/%s.csv", s.Dir, symbol)
	all, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(all))
	for _, b := range all {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// ReadCSV loads a full bar file. A header row is optional.
func ReadCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == "date" {
				continue
			}
		}
		b, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// WriteCSV writes bars in the csvHeader layout, overwriting any existing
// file.
func WriteCSV(path string, bars []market.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.Format(csvDateLayout),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseRow(row []string) (market.Bar, error) {
	if len(row) < 5 {
		return market.Bar{}, fmt.Errorf("bad row (need date,open,close,high,low[,volume]): %v", row)
	}

	t, err := time.Parse(csvDateLayout, row[0])
	if err != nil {
		t, err = time.Parse(time.RFC3339, row[0])
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad date %q", row[0])
		}
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad price %q", row[i+1])
		}
		vals[i] = v
	}

	var volume int64
	if len(row) > 5 && row[5] != "" {
		volume, err = strconv.ParseInt(row[5], 10, 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad volume %q", row[5])
		}
	}

	return market.Bar{
		Time:   t,
		Open:   vals[0],
		Close:  vals[1],
		High:   vals[2],
		Low:    vals[3],
		Volume: volume,
	}, nil
}
