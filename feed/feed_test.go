package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingli/atrader/market"
)

func day(d int) time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func sampleBars() []market.Bar {
	return []market.Bar{
		{Time: day(0), Open: 10, High: 10.5, Low: 9.8, Close: 10.2, Volume: 120000},
		{Time: day(1), Open: 10.2, High: 10.8, Low: 10.1, Close: 10.6, Volume: 98000},
		{Time: day(2), Open: 10.6, High: 10.7, Low: 10.0, Close: 10.1, Volume: 150000},
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "600030.csv")

	want := sampleBars()
	require.NoError(t, WriteCSV(path, want))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCSVSource_RangeFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(filepath.Join(dir, "600030.csv"), sampleBars()))

	src := &CSVSource{Dir: dir}
	bars, err := src.Bars(context.Background(), "600030", day(1), day(2))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, day(1), bars[0].Time)

	_, err = src.Bars(context.Background(), "600030", day(10), day(20))
	require.ErrorIs(t, err, ErrNoData)
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := &CSVSource{Dir: t.TempDir()}
	_, err := src.Bars(context.Background(), "600030", day(0), day(2))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}

type flakySource struct {
	failures int
	calls    int
}

func (f *flakySource) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return sampleBars(), nil
}

func TestRetrySource_RecoversFromTransientFailures(t *testing.T) {
	flaky := &flakySource{failures: 2}
	src := &RetrySource{
		Source: flaky,
		Policy: RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond},
	}

	bars, err := src.Bars(context.Background(), "600030", day(0), day(2))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, 3, flaky.calls)
}

func TestRetrySource_GivesUp(t *testing.T) {
	flaky := &flakySource{failures: 10}
	src := &RetrySource{
		Source: flaky,
		Policy: RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond},
	}

	_, err := src.Bars(context.Background(), "600030", day(0), day(2))
	require.Error(t, err)
	require.Equal(t, 3, flaky.calls)
}

func TestRetrySource_NoDataIsNotRetried(t *testing.T) {
	calls := 0
	src := &RetrySource{
		Source: SourceFunc(func(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
			calls++
			return nil, ErrNoData
		}),
		Policy: RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond},
	}

	_, err := src.Bars(context.Background(), "600030", day(0), day(2))
	require.ErrorIs(t, err, ErrNoData)
	require.Equal(t, 1, calls)
}

func TestRateLimitedSource_PassesThrough(t *testing.T) {
	src := NewRateLimited(SourceFunc(func(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
		return sampleBars(), nil
	}), 100)

	bars, err := src.Bars(context.Background(), "600030", day(0), day(2))
	require.NoError(t, err)
	require.Len(t, bars, 3)
}

func TestKlineClient_Bars(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/stock/kline/get", r.URL.Path)
		assert.Equal(t, "1.600030", r.URL.Query().Get("secid"))
		assert.Equal(t, "101", r.URL.Query().Get("klt"))
		assert.Equal(t, "1", r.URL.Query().Get("fqt"))

		fmt.Fprint(w, `{"data":{"code":"600030","name":"中信证券","klines":[
			"2024-01-02,10.00,10.20,10.50,9.80,120000,1224000",
			"2024-01-03,10.20,10.60,10.80,10.10,98000,1038800"
		]}}`)
	}))
	defer ts.Close()

	c := NewKlineClient().WithBaseURL(ts.URL)
	bars, err := c.Bars(context.Background(), "600030", day(0), day(1))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	require.Equal(t, day(0), bars[0].Time)
	require.Equal(t, 10.00, bars[0].Open)
	require.Equal(t, 10.20, bars[0].Close)
	require.Equal(t, 10.50, bars[0].High)
	require.Equal(t, 9.80, bars[0].Low)
	require.Equal(t, int64(120000), bars[0].Volume)
}

func TestKlineClient_EmptyAnswerIsErrNoData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	}))
	defer ts.Close()

	c := NewKlineClient().WithBaseURL(ts.URL)
	_, err := c.Bars(context.Background(), "600030", day(0), day(1))
	require.ErrorIs(t, err, ErrNoData)
}

func TestKlineClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewKlineClient().WithBaseURL(ts.URL)
	_, err := c.Bars(context.Background(), "600030", day(0), day(1))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}

func TestKlineClient_UnknownSymbol(t *testing.T) {
	c := NewKlineClient()
	_, err := c.Bars(context.Background(), "990001", day(0), day(1))
	require.Error(t, err)
}
