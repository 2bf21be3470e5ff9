package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/fxcache/currency_rates_app/internal/core/domain"
	portsprov "github.com/fxcache/currency_rates_app/internal/core/ports/providers"
	portsrepo "github.com/fxcache/currency_rates_app/internal/core/ports/repositories"
	"github.com/fxcache/currency_rates_app/internal/metrics"
	"github.com/fxcache/currency_rates_app/internal/utils/dateutil"
	"github.com/shopspring/decimal"
)

// RateService provides business logic for resolving currency rates through the
// write-through cache: reads go to the store first, and only a gap triggers a
// provider fetch whose results are merged back in.
type RateService struct {
	rateRepo portsrepo.RateRepositoryFacade
	provider portsprov.RateProvider
	currency string
	metrics  *metrics.Metrics
}

// NewRateService creates a new RateService. The metrics argument may be nil in tests.
func NewRateService(rateRepo portsrepo.RateRepositoryFacade, provider portsprov.RateProvider, currency string, m *metrics.Metrics) *RateService {
	return &RateService{
		rateRepo: rateRepo,
		provider: provider,
		currency: currency,
		metrics:  m,
	}
}

// ResolveLatest returns today's rate. The store is checked for a row dated
// exactly today; only a miss goes to the provider, and the fetched rate is
// persisted via CreateIfAbsent so a concurrent insert for the same date
// resolves to a single canonical row.
func (s *RateService) ResolveLatest(ctx context.Context) (*domain.CurrencyRate, error) {
	today := dateutil.Today()

	cached, err := s.rateRepo.FindByDate(ctx, today)
	if err == nil {
		s.countCacheHit(true)
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up today's rate: %w", err)
	}
	s.countCacheHit(false)

	resp, err := s.fetchLatest(ctx)
	if err != nil {
		return nil, err
	}

	value, date, err := portsprov.ExtractSingleRate(resp, s.currency)
	if err != nil {
		return nil, err
	}

	canonical, err := s.rateRepo.CreateIfAbsent(ctx, domain.CurrencyRate{RateValue: value, RateDate: date})
	if err != nil {
		return nil, fmt.Errorf("failed to persist latest rate: %w", err)
	}
	return &canonical, nil
}

// ResolveInterval returns the rates covering [startText, endText] inclusive.
//
// The completeness check is all-or-nothing: the store's rows are authoritative
// only when they cover every single day of the range. Any gap triggers one
// provider fetch for the whole range rather than per-day filling; the provider
// is billed per call, and historical rates never change, so a coarse refetch
// is the cheaper policy.
func (s *RateService) ResolveInterval(ctx context.Context, startText, endText string) (*domain.RateInterval, error) {
	start, err := dateutil.ParseDate(startText)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParseDate(endText)
	if err != nil {
		return nil, err
	}
	if start.After(end) || start.Before(dateutil.MinDate) {
		return nil, fmt.Errorf("%w: start date must be before or equal to end date and not before %s",
			apperrors.ErrInvalidRange, dateutil.MinDate.Format(dateutil.DateFormat))
	}

	expected := dateutil.DatesInRange(start, end)

	stored, err := s.rateRepo.FindByDates(ctx, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates for interval: %w", err)
	}

	if coversAll(stored, expected) {
		s.countCacheHit(true)
		return &domain.RateInterval{StartDate: startText, EndDate: endText, Rates: stored}, nil
	}
	s.countCacheHit(false)

	resp, err := s.fetchRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	fetched, err := s.normalizeRangeRates(resp)
	if err != nil {
		return nil, err
	}

	// The merge reports only newly inserted rows; the interval is answered
	// from the full fetched set so days that were already cached still count
	// toward the average.
	if _, err := s.rateRepo.InsertIgnoreConflicts(ctx, fetched); err != nil {
		return nil, fmt.Errorf("failed to merge fetched rates: %w", err)
	}

	return &domain.RateInterval{StartDate: resp.StartDate, EndDate: resp.EndDate, Rates: fetched}, nil
}

// normalizeRangeRates flattens the provider's date->currency->value mapping
// into rate records, skipping dates that lack the target currency's value.
func (s *RateService) normalizeRangeRates(resp *portsprov.RangeRates) ([]domain.CurrencyRate, error) {
	rates := make([]domain.CurrencyRate, 0, len(resp.Rates))
	for dateText, currencies := range resp.Rates {
		value, ok := currencies[s.currency]
		if !ok {
			continue
		}
		date, err := dateutil.ParseDate(dateText)
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable date %q in range response", apperrors.ErrMalformedResponse, dateText)
		}
		rates = append(rates, domain.CurrencyRate{RateValue: decimal.NewFromFloat(value), RateDate: date})
	}
	sortByDate(rates)
	return rates, nil
}

func (s *RateService) fetchLatest(ctx context.Context) (*portsprov.LatestRates, error) {
	s.countProviderRequest("latest")
	resp, err := s.provider.FetchLatest(ctx)
	if err != nil {
		s.countProviderError("latest")
		return nil, err
	}
	return resp, nil
}

func (s *RateService) fetchRange(ctx context.Context, start, end time.Time) (*portsprov.RangeRates, error) {
	s.countProviderRequest("range")
	resp, err := s.provider.FetchRange(ctx, start, end)
	if err != nil {
		s.countProviderError("range")
		return nil, err
	}
	return resp, nil
}

func (s *RateService) countCacheHit(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
}

func (s *RateService) countProviderRequest(endpoint string) {
	if s.metrics != nil {
		s.metrics.ProviderRequestsTotal.WithLabelValues(endpoint).Inc()
	}
}

func (s *RateService) countProviderError(endpoint string) {
	if s.metrics != nil {
		s.metrics.ProviderErrorsTotal.WithLabelValues(endpoint).Inc()
	}
}

// coversAll reports whether the stored rates cover every expected date. The
// unique index on rate_date guarantees at most one row per date, so set
// equality reduces to membership of each expected day.
func coversAll(stored []domain.CurrencyRate, expected []time.Time) bool {
	if len(stored) != len(expected) {
		return false
	}
	have := make(map[time.Time]struct{}, len(stored))
	for _, rate := range stored {
		have[rate.RateDate] = struct{}{}
	}
	for _, date := range expected {
		if _, ok := have[date]; !ok {
			return false
		}
	}
	return true
}

func sortByDate(rates []domain.CurrencyRate) {
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].RateDate.Before(rates[j].RateDate)
	})
}
