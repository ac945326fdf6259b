package market

import (
	"fmt"
	"strings"
)

// Exchange identifies the listing venue of an A-share instrument.
type Exchange string

const (
	Shanghai Exchange = "sh"
	Shenzhen Exchange = "sz"
	Beijing  Exchange = "bj"
)

// BoardLot is the minimum tradable share increment on A-share exchanges.
const BoardLot = 100

// InstrumentMeta describes an A-share instrument.
type InstrumentMeta struct {
	Code     string // bare 6-digit code, e.g. "600030"
	Name     string
	Exchange Exchange
	LotSize  int
}

// ExchangeFor maps a bare 6-digit stock code to its listing exchange by code
// prefix. Minute and kline endpoints want the exchange-prefixed form while the
// daily endpoints take the bare code, so both forms are derivable from here.
func ExchangeFor(code string) (Exchange, error) {
	switch {
	case strings.HasPrefix(code, "688"), strings.HasPrefix(code, "60"):
		return Shanghai, nil
	case strings.HasPrefix(code, "00"), strings.HasPrefix(code, "30"):
		return Shenzhen, nil
	case strings.HasPrefix(code, "83"), strings.HasPrefix(code, "43"), strings.HasPrefix(code, "87"):
		return Beijing, nil
	}
	return "", fmt.Errorf("unknown exchange for code %q", code)
}

// NormalizeSymbol converts a bare code to the exchange-prefixed symbol form,
// e.g. "600030" -> "sh600030". Already-prefixed symbols pass through unchanged.
func NormalizeSymbol(code string) (string, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	for _, ex := range []Exchange{Shanghai, Shenzhen, Beijing} {
		if strings.HasPrefix(code, string(ex)) {
			return code, nil
		}
	}
	ex, err := ExchangeFor(code)
	if err != nil {
		return "", err
	}
	return string(ex) + code, nil
}

// NewInstrument builds metadata for a bare code with the A-share board lot.
func NewInstrument(code, name string) (InstrumentMeta, error) {
	ex, err := ExchangeFor(code)
	if err != nil {
		return InstrumentMeta{}, err
	}
	return InstrumentMeta{
		Code:     code,
		Name:     name,
		Exchange: ex,
		LotSize:  BoardLot,
	}, nil
}
