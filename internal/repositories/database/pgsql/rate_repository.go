package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/fxcache/currency_rates_app/internal/core/domain"
	"github.com/fxcache/currency_rates_app/internal/models"
	"github.com/fxcache/currency_rates_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRateRepository implements the ports.RateRepositoryFacade interface using pgxpool.
//
// The currency_rate table enforces uniqueness on rate_date, and both write
// paths lean on ON CONFLICT DO NOTHING rather than a read-then-write check so
// concurrent inserts for the same date cannot produce two rows.
type PgxRateRepository struct {
	Pool *pgxpool.Pool
}

// NewPgxRateRepository creates a new PgxRateRepository.
func NewPgxRateRepository(db *pgxpool.Pool) *PgxRateRepository {
	return &PgxRateRepository{Pool: db}
}

// FindByDate retrieves the rate stored for an exact calendar date.
func (r *PgxRateRepository) FindByDate(ctx context.Context, date time.Time) (*domain.CurrencyRate, error) {
	query := `
		SELECT rate_value, rate_date
		FROM currency_rate
		WHERE rate_date = $1;
	`

	var modelRate models.CurrencyRate
	err := r.Pool.QueryRow(ctx, query, date).Scan(&modelRate.RateValue, &modelRate.RateDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no rate for date %s", apperrors.ErrNotFound, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to get rate by date: %w", err)
	}

	domainRate := mapping.ToDomainCurrencyRate(modelRate)
	return &domainRate, nil
}

// FindByDates retrieves all stored rates whose date is in the given set,
// ordered by date ascending.
func (r *PgxRateRepository) FindByDates(ctx context.Context, dates []time.Time) ([]domain.CurrencyRate, error) {
	if len(dates) == 0 {
		return []domain.CurrencyRate{}, nil
	}

	query := `
		SELECT rate_value, rate_date
		FROM currency_rate
		WHERE rate_date = ANY($1)
		ORDER BY rate_date ASC;
	`

	rows, err := r.Pool.Query(ctx, query, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates by dates: %w", err)
	}
	defer rows.Close()

	var modelRates []models.CurrencyRate
	for rows.Next() {
		var modelRate models.CurrencyRate
		if err := rows.Scan(&modelRate.RateValue, &modelRate.RateDate); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		modelRates = append(modelRates, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rates: %w", err)
	}

	return mapping.ToDomainCurrencyRates(modelRates), nil
}

// InsertIgnoreConflicts persists the given rates in one statement, skipping any
// date already present, and returns only the rows actually inserted.
func (r *PgxRateRepository) InsertIgnoreConflicts(ctx context.Context, rates []domain.CurrencyRate) ([]domain.CurrencyRate, error) {
	if len(rates) == 0 {
		return []domain.CurrencyRate{}, nil
	}

	values := make([]string, 0, len(rates))
	args := make([]interface{}, 0, len(rates)*2)
	for i, rate := range rates {
		modelRate := mapping.ToModelCurrencyRate(rate)
		values = append(values, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, modelRate.RateValue, modelRate.RateDate)
	}

	query := `
		INSERT INTO currency_rate (rate_value, rate_date)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (rate_date) DO NOTHING
		RETURNING rate_value, rate_date;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapIntegrityError("failed to bulk insert rates", err)
	}
	defer rows.Close()

	var inserted []models.CurrencyRate
	for rows.Next() {
		var modelRate models.CurrencyRate
		if err := rows.Scan(&modelRate.RateValue, &modelRate.RateDate); err != nil {
			return nil, fmt.Errorf("failed to scan inserted rate: %w", err)
		}
		inserted = append(inserted, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, mapIntegrityError("error iterating inserted rates", err)
	}

	return mapping.ToDomainCurrencyRates(inserted), nil
}

// CreateIfAbsent persists the rate unless one already exists for its date, and
// returns whichever row is canonical. Losing the insert race simply means
// reading back the winner's row.
func (r *PgxRateRepository) CreateIfAbsent(ctx context.Context, rate domain.CurrencyRate) (domain.CurrencyRate, error) {
	modelRate := mapping.ToModelCurrencyRate(rate)

	query := `
		INSERT INTO currency_rate (rate_value, rate_date)
		VALUES ($1, $2)
		ON CONFLICT (rate_date) DO NOTHING
		RETURNING rate_value, rate_date;
	`

	var created models.CurrencyRate
	err := r.Pool.QueryRow(ctx, query, modelRate.RateValue, modelRate.RateDate).Scan(&created.RateValue, &created.RateDate)
	if err == nil {
		return mapping.ToDomainCurrencyRate(created), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.CurrencyRate{}, mapIntegrityError("failed to insert rate", err)
	}

	// Conflict: another row owns this date, return it.
	existing, err := r.FindByDate(ctx, rate.RateDate)
	if err != nil {
		return domain.CurrencyRate{}, fmt.Errorf("failed to read existing rate after conflict: %w", err)
	}
	return *existing, nil
}

// mapIntegrityError surfaces postgres integrity violations (SQLSTATE class 23)
// as apperrors.ErrPersistenceConflict; everything else passes through wrapped.
func mapIntegrityError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s: %s", apperrors.ErrPersistenceConflict, msg, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
