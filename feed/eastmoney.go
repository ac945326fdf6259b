package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mingli/atrader/market"
)

// DefaultKlineURL is the public daily-kline endpoint the original data
// provider wraps.
const DefaultKlineURL = "https://push2his.eastmoney.com"

// Adjust selects the price adjustment applied by the provider.
type Adjust string

const (
	AdjustNone    Adjust = "0"
	AdjustForward Adjust = "1" // qfq, the adjustment used throughout
	AdjustBack    Adjust = "2" // hfq
)

// KlineClient fetches qfq-adjusted daily bars for A-share instruments.
type KlineClient struct {
	baseURL    string
	adjust     Adjust
	httpClient *http.Client
}

// NewKlineClient builds a client against the default endpoint with a bounded
// request timeout.
func NewKlineClient() *KlineClient {
	return &KlineClient{
		baseURL: DefaultKlineURL,
		adjust:  AdjustForward,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL overrides the endpoint, mainly for tests.
func (c *KlineClient) WithBaseURL(u string) *KlineClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// secid maps a bare 6-digit code to the provider's market-prefixed id:
// 1.<code> for Shanghai, 0.<code> for Shenzhen and Beijing.
func secid(code string) (string, error) {
	ex, err := market.ExchangeFor(code)
	if err != nil {
		return "", err
	}
	if ex == market.Shanghai {
		return "1." + code, nil
	}
	return "0." + code, nil
}

type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// Bars fetches daily bars for the given bare code over [start, end].
// The whole range succeeds or fails together; an empty answer is ErrNoData.
func (c *KlineClient) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	id, err := secid(symbol)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("secid", id)
	q.Set("klt", "101") // daily
	q.Set("fqt", string(c.adjust))
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")

	u := fmt.Sprintf("%s/api/qt/stock/kline/get?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed: fetch %s: status %d: %s", symbol, resp.StatusCode, string(body))
	}

	var kr klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		return nil, fmt.Errorf("feed: fetch %s: decode: %w", symbol, err)
	}
	if kr.Data == nil || len(kr.Data.Klines) == 0 {
		return nil, ErrNoData
	}

	bars := make([]market.Bar, 0, len(kr.Data.Klines))
	for _, line := range kr.Data.Klines {
		b, err := parseKline(line)
		if err != nil {
			return nil, fmt.Errorf("feed: fetch %s: %w", symbol, err)
		}
		bars = append(bars, b)
	}

	if err := market.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", symbol, err)
	}
	return bars, nil
}

// parseKline decodes one "date,open,close,high,low,volume,amount" line.
func parseKline(line string) (market.Bar, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return market.Bar{}, fmt.Errorf("bad kline %q", line)
	}

	t, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return market.Bar{}, fmt.Errorf("bad kline date %q", parts[0])
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad kline price %q", parts[i+1])
		}
		vals[i] = v
	}

	volume, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return market.Bar{}, fmt.Errorf("bad kline volume %q", parts[5])
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
