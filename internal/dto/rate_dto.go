package dto

import (
	"encoding/json"

	"github.com/fxcache/currency_rates_app/internal/core/domain"
	"github.com/fxcache/currency_rates_app/internal/utils/dateutil"
	"github.com/shopspring/decimal"
)

// LatestRateResponse defines the structure for API responses containing the latest rate.
type LatestRateResponse struct {
	RateValue decimal.Decimal `json:"rate_value"`
	RateDate  string          `json:"rate_date"`
}

// ToLatestRateResponse converts a domain.CurrencyRate to LatestRateResponse DTO
func ToLatestRateResponse(rate *domain.CurrencyRate) LatestRateResponse {
	return LatestRateResponse{
		RateValue: rate.RateValue,
		RateDate:  rate.RateDate.Format(dateutil.DateFormat),
	}
}

// IntervalRateResponse defines the structure for API responses containing the
// average rate over a date interval. The average is rendered with exactly six
// fractional digits; decimal.Decimal trims trailing zeros when marshaled, so
// the value is emitted as a json.Number instead.
type IntervalRateResponse struct {
	AverageRateValue json.Number `json:"average_rate_value"`
	StartDate        string      `json:"start_date"`
	EndDate          string      `json:"end_date"`
}

// ToIntervalRateResponse builds the interval response from the resolved
// interval and its precomputed average.
func ToIntervalRateResponse(interval *domain.RateInterval, average decimal.Decimal) IntervalRateResponse {
	return IntervalRateResponse{
		AverageRateValue: json.Number(average.StringFixedBank(6)),
		StartDate:        interval.StartDate,
		EndDate:          interval.EndDate,
	}
}
