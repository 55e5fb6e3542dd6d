package domain

import (
	"fmt"
	"strings"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyINR Currency = "INR"
)

var currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyAUD, CurrencyINR}

func ParseCurrency(raw string) (Currency, error) {
	return parseEnum("currency", strings.ToUpper(strings.TrimSpace(raw)), currencies)
}

func (c *Currency) UnmarshalText(text []byte) error {
	v, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// parseEnum matches raw against a closed set of values.
func parseEnum[T ~string](kind, raw string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == raw {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidArgument, kind, raw)
}
