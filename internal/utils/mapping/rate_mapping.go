package mapping

import (
	"github.com/fxcache/currency_rates_app/internal/core/domain"
	"github.com/fxcache/currency_rates_app/internal/models"
)

// ToModelCurrencyRate converts a domain CurrencyRate to a model CurrencyRate
func ToModelCurrencyRate(d domain.CurrencyRate) models.CurrencyRate {
	return models.CurrencyRate{
		RateValue: d.RateValue,
		RateDate:  d.RateDate,
	}
}

// ToDomainCurrencyRate converts a model CurrencyRate to a domain CurrencyRate
func ToDomainCurrencyRate(m models.CurrencyRate) domain.CurrencyRate {
	return domain.CurrencyRate{
		RateValue: m.RateValue,
		RateDate:  m.RateDate,
	}
}

// ToDomainCurrencyRates converts a slice of model rates to domain rates.
func ToDomainCurrencyRates(ms []models.CurrencyRate) []domain.CurrencyRate {
	rates := make([]domain.CurrencyRate, len(ms))
	for i, m := range ms {
		rates[i] = ToDomainCurrencyRate(m)
	}
	return rates
}
