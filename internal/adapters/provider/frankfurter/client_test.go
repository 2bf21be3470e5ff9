package frankfurter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fxcache/currency_rates_app/internal/adapters/provider/frankfurter"
	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2023-01-01","rates":{"USD":1.1234}}`))
	}))
	defer srv.Close()

	client := frankfurter.NewClient(srv.URL, "USD", 5*time.Second)

	resp, err := client.FetchLatest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", resp.Date)
	assert.Equal(t, 1.1234, resp.Rates["USD"])
}

func TestFetchRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023-01-01..2023-01-03", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"base": "EUR",
			"start_date": "2023-01-01",
			"end_date": "2023-01-03",
			"rates": {
				"2023-01-02": {"USD": 1.06},
				"2023-01-03": {"USD": 1.07}
			}
		}`))
	}))
	defer srv.Close()

	client := frankfurter.NewClient(srv.URL, "USD", 5*time.Second)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.January, 3, 0, 0, 0, 0, time.UTC)
	resp, err := client.FetchRange(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", resp.StartDate)
	assert.Equal(t, "2023-01-03", resp.EndDate)
	require.Len(t, resp.Rates, 2)
	assert.Equal(t, 1.06, resp.Rates["2023-01-02"]["USD"])
}

func TestFetchLatest_Non2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := frankfurter.NewClient(srv.URL, "USD", 5*time.Second)

	_, err := client.FetchLatest(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFetchRange_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := frankfurter.NewClient(srv.URL, "USD", time.Second)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchRange(context.Background(), start, start)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFetchLatest_UnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := frankfurter.NewClient(srv.URL, "USD", 5*time.Second)

	_, err := client.FetchLatest(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedResponse)
}
