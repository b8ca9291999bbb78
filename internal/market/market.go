// Package market backs get_exchange_rate and get_interest_rate with a
// synthetic, in-memory curve. No real market-data feed exists anywhere in
// this system's dependency surface, so this package is intentionally
// standard-library only.
package market

import (
	"fmt"
	"sort"
)

// Curve is an in-memory exchange-rate / interest-rate source keyed by pair
// or (code, term).
type Curve struct {
	exchangeRates map[string]float64
	interestRates map[string]float64
}

// NewCurve builds a Curve seeded with a fixed synthetic snapshot.
func NewCurve() *Curve {
	return &Curve{
		exchangeRates: map[string]float64{
			"USD/KRW": 1382.10,
			"EUR/KRW": 1495.75,
			"JPY/KRW": 9.15,
			"USD/EUR": 0.924,
		},
		interestRates: map[string]float64{
			"CD91/3M":     3.48,
			"KORIBOR/6M":  3.62,
			"KORIBOR/12M": 3.70,
			"COFIX/1M":    3.40,
		},
	}
}

// ExchangeRate returns the quote for from→to. It never raises: an unknown
// pair is reported as an observation, not a Go error, matching every other
// tool in this system.
func (c *Curve) ExchangeRate(from, to string) string {
	pair := from + "/" + to
	if rate, ok := c.exchangeRates[pair]; ok {
		return fmt.Sprintf("%s 환율: %.4f", pair, rate)
	}
	if rate, ok := c.exchangeRates[to+"/"+from]; ok && rate != 0 {
		return fmt.Sprintf("%s 환율: %.4f (역산)", pair, 1/rate)
	}
	return fmt.Sprintf("오류: %s 환율 정보를 찾을 수 없습니다.", pair)
}

// InterestRate returns the quote for rateCode at term.
func (c *Curve) InterestRate(rateCode, term string) string {
	key := rateCode + "/" + term
	if rate, ok := c.interestRates[key]; ok {
		return fmt.Sprintf("%s 금리: %.3f%%", key, rate)
	}
	return fmt.Sprintf("오류: %s 금리 정보를 찾을 수 없습니다.", key)
}

// ListPairs returns every known exchange-rate pair, sorted, mostly useful
// for tests and diagnostics.
func (c *Curve) ListPairs() []string {
	pairs := make([]string, 0, len(c.exchangeRates))
	for pair := range c.exchangeRates {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}
