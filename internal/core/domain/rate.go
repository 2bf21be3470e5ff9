package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate is the rate of the target currency against the base for a
// single calendar day. Rates for closed historical dates never change, so a
// CurrencyRate is immutable once persisted and there is at most one per date.
type CurrencyRate struct {
	RateValue decimal.Decimal `json:"rateValue"`
	RateDate  time.Time       `json:"rateDate"` // calendar date, UTC midnight
}

// RateInterval is the outcome of resolving a date range: the rates covering it
// plus the effective interval bounds as text. When the range was served from
// the store the bounds echo the request; when it was fetched upstream they are
// whatever the provider reported, which is authoritative if it trimmed the
// range.
type RateInterval struct {
	StartDate string
	EndDate   string
	Rates     []CurrencyRate
}
