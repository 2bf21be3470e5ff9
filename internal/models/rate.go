package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyRate mirrors a row of the currency_rate table.
// rate_date carries a unique index; rate_value is NUMERIC(11,6).
type CurrencyRate struct {
	RateValue decimal.Decimal `json:"rateValue"`
	RateDate  time.Time       `json:"rateDate"`
}
