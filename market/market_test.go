package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestValidateBars_OK(t *testing.T) {
	bars := []Bar{
		{Time: day(0), Open: 10, High: 11, Low: 9.5, Close: 10.5},
		{Time: day(1), Open: 10.5, High: 12, Low: 10, Close: 11.8},
	}
	require.NoError(t, ValidateBars(bars))
}

func TestValidateBars_Rejects(t *testing.T) {
	tests := []struct {
		name string
		bars []Bar
	}{
		{
			name: "close above high",
			bars: []Bar{{Time: day(0), Open: 10, High: 10.5, Low: 9, Close: 11}},
		},
		{
			name: "low above high",
			bars: []Bar{{Time: day(0), Open: 10, High: 9, Low: 10, Close: 9.5}},
		},
		{
			name: "zero price",
			bars: []Bar{{Time: day(0), Open: 0, High: 1, Low: 0.5, Close: 0.8}},
		},
		{
			name: "duplicate timestamp",
			bars: []Bar{
				{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10},
				{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10},
			},
		},
		{
			name: "out of order",
			bars: []Bar{
				{Time: day(1), Open: 10, High: 11, Low: 9, Close: 10},
				{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, ValidateBars(tt.bars))
		})
	}
}

func TestExchangeFor(t *testing.T) {
	tests := []struct {
		code string
		want Exchange
	}{
		{"600030", Shanghai},
		{"688981", Shanghai},
		{"000001", Shenzhen},
		{"300750", Shenzhen},
		{"830799", Beijing},
		{"430047", Beijing},
		{"870436", Beijing},
	}
	for _, tt := range tests {
		ex, err := ExchangeFor(tt.code)
		require.NoError(t, err, tt.code)
		require.Equal(t, tt.want, ex, tt.code)
	}

	_, err := ExchangeFor("990001")
	require.Error(t, err)
}

func TestNormalizeSymbol(t *testing.T) {
	sym, err := NormalizeSymbol("600030")
	require.NoError(t, err)
	require.Equal(t, "sh600030", sym)

	sym, err = NormalizeSymbol("sz000001")
	require.NoError(t, err)
	require.Equal(t, "sz000001", sym)
}

func TestLastClose(t *testing.T) {
	require.Equal(t, 0.0, LastClose(nil))
	bars := []Bar{
		{Time: day(0), Close: 10},
		{Time: day(1), Close: 12.5},
	}
	require.Equal(t, 12.5, LastClose(bars))
}
