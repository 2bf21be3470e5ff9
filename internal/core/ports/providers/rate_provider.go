package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/fxcache/currency_rates_app/internal/utils/dateutil"
	"github.com/shopspring/decimal"
)

// LatestRates is the provider's response shape for the "latest" endpoint:
// one date with a currency-code-to-value mapping.
type LatestRates struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// RangeRates is the provider's response shape for a date-range query. The
// echoed start/end dates are authoritative when the provider trims the
// requested range. Rates maps date text to a currency-code-to-value mapping.
type RangeRates struct {
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// RateProvider defines the upstream historical-rates service
type RateProvider interface {
	// FetchLatest retrieves the most recent rate for the target currency.
	// Transport failures and non-2xx statuses wrap apperrors.ErrUpstreamUnavailable.
	FetchLatest(ctx context.Context) (*LatestRates, error)

	// FetchRange retrieves rates for every published day in [start, end].
	// Same failure semantics as FetchLatest.
	FetchRange(ctx context.Context, start, end time.Time) (*RangeRates, error)
}

// ExtractSingleRate pulls the target currency's value and the quoted date out
// of a latest-rates response, wrapping apperrors.ErrMalformedResponse when
// either is missing.
func ExtractSingleRate(resp *LatestRates, currency string) (decimal.Decimal, time.Time, error) {
	value, ok := resp.Rates[currency]
	if !ok {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("%w: missing rate for %s", apperrors.ErrMalformedResponse, currency)
	}
	if resp.Date == "" {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("%w: missing date", apperrors.ErrMalformedResponse)
	}
	date, err := dateutil.ParseDate(resp.Date)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("%w: unparseable date %q", apperrors.ErrMalformedResponse, resp.Date)
	}
	return decimal.NewFromFloat(value), date, nil
}
