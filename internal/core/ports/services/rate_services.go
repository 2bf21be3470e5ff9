package services

import (
	"context"

	"github.com/fxcache/currency_rates_app/internal/core/domain"
)

// RateReaderSvc defines the read operations exposed to the HTTP layer
type RateReaderSvc interface {
	// ResolveLatest returns today's rate, from the store when cached and from
	// the provider otherwise.
	ResolveLatest(ctx context.Context) (*domain.CurrencyRate, error)

	// ResolveInterval returns the rates covering [startText, endText]. A range
	// fully present in the store is served as-is; any gap triggers a single
	// full-range provider fetch whose results are merged into the store.
	ResolveInterval(ctx context.Context, startText, endText string) (*domain.RateInterval, error)
}

// RateSvcFacade combines all rate service interfaces
type RateSvcFacade interface {
	RateReaderSvc
}
