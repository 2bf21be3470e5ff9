package repositories

import (
	"context"
	"time"

	"github.com/fxcache/currency_rates_app/internal/core/domain"
)

// RateReader defines read operations for cached currency rates
type RateReader interface {
	// FindByDate retrieves the rate for an exact calendar date.
	// Returns apperrors.ErrNotFound when no rate is stored for that date.
	FindByDate(ctx context.Context, date time.Time) (*domain.CurrencyRate, error)

	// FindByDates retrieves every stored rate whose date is in the given set,
	// ordered by date ascending so averages are reproducible.
	FindByDates(ctx context.Context, dates []time.Time) ([]domain.CurrencyRate, error)
}

// RateWriter defines write operations for cached currency rates
type RateWriter interface {
	// InsertIgnoreConflicts persists the given rates, silently skipping any
	// whose date is already stored, and returns only the newly inserted rows.
	InsertIgnoreConflicts(ctx context.Context, rates []domain.CurrencyRate) ([]domain.CurrencyRate, error)

	// CreateIfAbsent persists the rate unless one already exists for its date,
	// returning whichever row ends up canonical for that date.
	CreateIfAbsent(ctx context.Context, rate domain.CurrencyRate) (domain.CurrencyRate, error)
}

// RateRepositoryFacade combines all rate repository interfaces
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
