package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/fxcache/currency_rates_app/internal/core/domain"
	portsprov "github.com/fxcache/currency_rates_app/internal/core/ports/providers"
	portsrepo "github.com/fxcache/currency_rates_app/internal/core/ports/repositories"
	"github.com/fxcache/currency_rates_app/internal/core/services"
	"github.com/fxcache/currency_rates_app/internal/utils/dateutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindByDate(ctx context.Context, date time.Time) (*domain.CurrencyRate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyRate), args.Error(1)
}

func (m *MockRateRepository) FindByDates(ctx context.Context, dates []time.Time) ([]domain.CurrencyRate, error) {
	args := m.Called(ctx, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyRate), args.Error(1)
}

func (m *MockRateRepository) InsertIgnoreConflicts(ctx context.Context, rates []domain.CurrencyRate) ([]domain.CurrencyRate, error) {
	args := m.Called(ctx, rates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyRate), args.Error(1)
}

func (m *MockRateRepository) CreateIfAbsent(ctx context.Context, rate domain.CurrencyRate) (domain.CurrencyRate, error) {
	args := m.Called(ctx, rate)
	return args.Get(0).(domain.CurrencyRate), args.Error(1)
}

var _ portsrepo.RateRepositoryFacade = (*MockRateRepository)(nil)

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchLatest(ctx context.Context) (*portsprov.LatestRates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsprov.LatestRates), args.Error(1)
}

func (m *MockRateProvider) FetchRange(ctx context.Context, start, end time.Time) (*portsprov.RangeRates, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsprov.RangeRates), args.Error(1)
}

var _ portsprov.RateProvider = (*MockRateProvider)(nil)

// --- Test Suite ---
type RateServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockRateRepository
	mockProvider *MockRateProvider
	service      *services.RateService
}

func (suite *RateServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRateRepository)
	suite.mockProvider = new(MockRateProvider)
	suite.service = services.NewRateService(suite.mockRepo, suite.mockProvider, "USD", nil)
}

func day(d int) time.Time {
	return time.Date(2023, time.January, d, 0, 0, 0, 0, time.UTC)
}

func storedRate(d int, value string) domain.CurrencyRate {
	return domain.CurrencyRate{
		RateValue: decimal.RequireFromString(value),
		RateDate:  day(d),
	}
}

// --- ResolveInterval ---

func (suite *RateServiceTestSuite) TestResolveInterval_FullyCovered_NoFetch() {
	ctx := context.Background()
	stored := []domain.CurrencyRate{
		storedRate(1, "1.05"),
		storedRate(2, "1.06"),
		storedRate(3, "1.07"),
	}
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).Return(stored, nil).Twice()

	// Two successive resolutions of a fully covered range never hit the provider.
	for i := 0; i < 2; i++ {
		interval, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-03")

		suite.Require().NoError(err)
		suite.Equal("2023-01-01", interval.StartDate)
		suite.Equal("2023-01-03", interval.EndDate)
		suite.Equal(stored, interval.Rates)
	}

	suite.mockProvider.AssertNumberOfCalls(suite.T(), "FetchRange", 0)
	suite.mockProvider.AssertNumberOfCalls(suite.T(), "FetchLatest", 0)
}

func (suite *RateServiceTestSuite) TestResolveInterval_QueriesEveryExpectedDay() {
	ctx := context.Background()
	var queried []time.Time
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).
		Run(func(args mock.Arguments) {
			queried = args.Get(1).([]time.Time)
		}).
		Return([]domain.CurrencyRate{storedRate(1, "1.0"), storedRate(2, "1.0")}, nil).Once()

	_, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-02")

	suite.Require().NoError(err)
	suite.Require().Len(queried, 2)
	suite.True(queried[0].Equal(day(1)))
	suite.True(queried[1].Equal(day(2)))
}

func (suite *RateServiceTestSuite) TestResolveInterval_SingleGap_RefetchesWholeRange() {
	ctx := context.Background()
	// Day 2 is missing from the store.
	stored := []domain.CurrencyRate{storedRate(1, "1.05"), storedRate(3, "1.07")}
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).Return(stored, nil).Once()

	resp := &portsprov.RangeRates{
		StartDate: "2023-01-01",
		EndDate:   "2023-01-03",
		Rates: map[string]map[string]float64{
			"2023-01-03": {"USD": 1.07},
			"2023-01-01": {"USD": 1.05},
			"2023-01-02": {"USD": 1.06},
		},
	}
	suite.mockProvider.On("FetchRange", ctx, day(1), day(3)).Return(resp, nil).Once()

	inserted := []domain.CurrencyRate{storedRate(2, "1.06")}
	suite.mockRepo.On("InsertIgnoreConflicts", ctx, mock.AnythingOfType("[]domain.CurrencyRate")).
		Run(func(args mock.Arguments) {
			rates := args.Get(1).([]domain.CurrencyRate)
			// The whole range is upserted, sorted by date, not just the gap.
			suite.Require().Len(rates, 3)
			suite.True(rates[0].RateDate.Equal(day(1)))
			suite.True(rates[1].RateDate.Equal(day(2)))
			suite.True(rates[2].RateDate.Equal(day(3)))
		}).
		Return(inserted, nil).Once()

	interval, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-03")

	suite.Require().NoError(err)
	// The provider's echoed bounds win on the refetch path.
	suite.Equal("2023-01-01", interval.StartDate)
	suite.Equal("2023-01-03", interval.EndDate)
	// Every fetched day is returned, not just the newly inserted gap.
	suite.Require().Len(interval.Rates, 3)
	suite.True(interval.Rates[0].RateDate.Equal(day(1)))
	suite.True(interval.Rates[1].RateDate.Equal(day(2)))
	suite.True(interval.Rates[2].RateDate.Equal(day(3)))
	suite.mockProvider.AssertNumberOfCalls(suite.T(), "FetchRange", 1)
}

func (suite *RateServiceTestSuite) TestResolveInterval_PartiallyCached_AverageCoversAllDays() {
	ctx := context.Background()
	// Day 1 is already cached; days 2 and 3 are missing.
	stored := []domain.CurrencyRate{storedRate(1, "1.00")}
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).Return(stored, nil).Once()

	resp := &portsprov.RangeRates{
		StartDate: "2023-01-01",
		EndDate:   "2023-01-03",
		Rates: map[string]map[string]float64{
			"2023-01-01": {"USD": 1.00},
			"2023-01-02": {"USD": 2.00},
			"2023-01-03": {"USD": 3.00},
		},
	}
	suite.mockProvider.On("FetchRange", ctx, day(1), day(3)).Return(resp, nil).Once()

	// Only the two missing days are actually inserted.
	inserted := []domain.CurrencyRate{storedRate(2, "2.00"), storedRate(3, "3.00")}
	suite.mockRepo.On("InsertIgnoreConflicts", ctx, mock.AnythingOfType("[]domain.CurrencyRate")).
		Return(inserted, nil).Once()

	interval, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-03")

	suite.Require().NoError(err)
	suite.Require().Len(interval.Rates, 3)
	// The already-cached day still counts toward the average.
	suite.Equal("2.000000", services.AverageRate(interval.Rates).StringFixed(6))
}

func (suite *RateServiceTestSuite) TestResolveInterval_SkipsDatesMissingTargetCurrency() {
	ctx := context.Background()
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).
		Return([]domain.CurrencyRate{}, nil).Once()

	resp := &portsprov.RangeRates{
		StartDate: "2023-01-01",
		EndDate:   "2023-01-02",
		Rates: map[string]map[string]float64{
			"2023-01-01": {"USD": 1.05},
			"2023-01-02": {"GBP": 0.88}, // no USD value published
		},
	}
	suite.mockProvider.On("FetchRange", ctx, day(1), day(2)).Return(resp, nil).Once()

	suite.mockRepo.On("InsertIgnoreConflicts", ctx, mock.AnythingOfType("[]domain.CurrencyRate")).
		Run(func(args mock.Arguments) {
			rates := args.Get(1).([]domain.CurrencyRate)
			suite.Require().Len(rates, 1)
			suite.True(rates[0].RateDate.Equal(day(1)))
		}).
		Return([]domain.CurrencyRate{storedRate(1, "1.05")}, nil).Once()

	_, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-02")

	suite.Require().NoError(err)
}

func (suite *RateServiceTestSuite) TestResolveInterval_StartAfterEnd() {
	_, err := suite.service.ResolveInterval(context.Background(), "2023-01-05", "2023-01-01")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindByDates")
}

func (suite *RateServiceTestSuite) TestResolveInterval_BeforeMinDate() {
	_, err := suite.service.ResolveInterval(context.Background(), "1990-01-01", "1990-01-02")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidRange)
}

func (suite *RateServiceTestSuite) TestResolveInterval_BadDateText() {
	_, err := suite.service.ResolveInterval(context.Background(), "20230101", "2023-01-02")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidDateFormat)
}

func (suite *RateServiceTestSuite) TestResolveInterval_UpstreamFailureSurfaces() {
	ctx := context.Background()
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).
		Return([]domain.CurrencyRate{}, nil).Once()
	suite.mockProvider.On("FetchRange", ctx, day(1), day(2)).
		Return(nil, fmt.Errorf("%w: status 503", apperrors.ErrUpstreamUnavailable)).Once()

	_, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-02")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUpstreamUnavailable)
	// No retry against a metered API.
	suite.mockProvider.AssertNumberOfCalls(suite.T(), "FetchRange", 1)
}

func (suite *RateServiceTestSuite) TestResolveInterval_PersistenceConflictSurfaces() {
	ctx := context.Background()
	suite.mockRepo.On("FindByDates", ctx, mock.AnythingOfType("[]time.Time")).
		Return([]domain.CurrencyRate{}, nil).Once()
	suite.mockProvider.On("FetchRange", ctx, day(1), day(1)).
		Return(&portsprov.RangeRates{
			StartDate: "2023-01-01",
			EndDate:   "2023-01-01",
			Rates:     map[string]map[string]float64{"2023-01-01": {"USD": 1.05}},
		}, nil).Once()
	suite.mockRepo.On("InsertIgnoreConflicts", ctx, mock.AnythingOfType("[]domain.CurrencyRate")).
		Return(nil, fmt.Errorf("%w: duplicate key", apperrors.ErrPersistenceConflict)).Once()

	_, err := suite.service.ResolveInterval(ctx, "2023-01-01", "2023-01-01")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPersistenceConflict)
}

// --- ResolveLatest ---

func (suite *RateServiceTestSuite) TestResolveLatest_CacheHit_NoNetworkCall() {
	ctx := context.Background()
	today := dateutil.Today()
	cached := &domain.CurrencyRate{RateValue: decimal.RequireFromString("1.1234"), RateDate: today}
	suite.mockRepo.On("FindByDate", ctx, today).Return(cached, nil).Once()

	rate, err := suite.service.ResolveLatest(ctx)

	suite.Require().NoError(err)
	suite.Equal(cached, rate)
	suite.mockProvider.AssertNumberOfCalls(suite.T(), "FetchLatest", 0)
}

func (suite *RateServiceTestSuite) TestResolveLatest_CacheMiss_FetchesAndPersists() {
	ctx := context.Background()
	suite.mockRepo.On("FindByDate", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("%w: no rate", apperrors.ErrNotFound)).Once()

	resp := &portsprov.LatestRates{Date: "2023-01-01", Rates: map[string]float64{"USD": 1.1234}}
	suite.mockProvider.On("FetchLatest", ctx).Return(resp, nil).Once()

	canonical := storedRate(1, "1.1234")
	suite.mockRepo.On("CreateIfAbsent", ctx, mock.AnythingOfType("domain.CurrencyRate")).
		Run(func(args mock.Arguments) {
			rate := args.Get(1).(domain.CurrencyRate)
			suite.True(rate.RateDate.Equal(day(1)))
			suite.True(rate.RateValue.Equal(decimal.NewFromFloat(1.1234)))
		}).
		Return(canonical, nil).Once()

	rate, err := suite.service.ResolveLatest(ctx)

	suite.Require().NoError(err)
	suite.True(rate.RateValue.Equal(canonical.RateValue))
	suite.True(rate.RateDate.Equal(canonical.RateDate))
}

func (suite *RateServiceTestSuite) TestResolveLatest_MissingCurrencyInResponse() {
	ctx := context.Background()
	suite.mockRepo.On("FindByDate", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("%w: no rate", apperrors.ErrNotFound)).Once()
	suite.mockProvider.On("FetchLatest", ctx).
		Return(&portsprov.LatestRates{Date: "2023-01-01", Rates: map[string]float64{}}, nil).Once()

	_, err := suite.service.ResolveLatest(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMalformedResponse)
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateIfAbsent")
}

func TestRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateServiceTestSuite))
}
