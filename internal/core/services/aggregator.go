package services

import (
	"github.com/fxcache/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AverageRate returns the arithmetic mean of the rate values, rounded to six
// fractional digits using round-half-to-even (banker's rounding, RoundBank).
// Decimal.String trims trailing zeros, so boundaries that owe the caller a
// fixed-width value render the result with StringFixed(6)/StringFixedBank(6).
// An empty input yields an explicit 0.000000 rather than an error; callers
// that care about "no data" check the record set before averaging.
func AverageRate(rates []domain.CurrencyRate) decimal.Decimal {
	if len(rates) == 0 {
		return decimal.New(0, -6)
	}

	total := decimal.Zero
	for _, rate := range rates {
		total = total.Add(rate.RateValue)
	}
	return total.Div(decimal.NewFromInt(int64(len(rates)))).RoundBank(6)
}
