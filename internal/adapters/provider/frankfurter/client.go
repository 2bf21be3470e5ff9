// Package frankfurter implements the rate provider port against the
// Frankfurter historical exchange-rates API. The API is free, keyless, and
// serves `/latest` plus `/{start}..{end}` time-series endpoints.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	"github.com/fxcache/currency_rates_app/internal/core/ports/providers"
	"github.com/fxcache/currency_rates_app/internal/utils/dateutil"
)

// Client fetches rates for a single target currency from the Frankfurter API.
type Client struct {
	baseURL        string
	targetCurrency string
	httpClient     *http.Client
}

// NewClient creates a new Client. The timeout bounds every request; upstream
// calls must fail rather than hang.
func NewClient(baseURL, targetCurrency string, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		targetCurrency: targetCurrency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchLatest retrieves the most recently published rate for the target currency.
func (c *Client) FetchLatest(ctx context.Context) (*providers.LatestRates, error) {
	url := fmt.Sprintf("%s/latest?to=%s", c.baseURL, c.targetCurrency)

	var resp providers.LatestRates
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchRange retrieves rates for every published day in [start, end].
func (c *Client) FetchRange(ctx context.Context, start, end time.Time) (*providers.RangeRates, error) {
	url := fmt.Sprintf("%s/%s..%s?to=%s",
		c.baseURL,
		start.Format(dateutil.DateFormat),
		end.Format(dateutil.DateFormat),
		c.targetCurrency,
	)

	var resp providers.RangeRates
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", apperrors.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrMalformedResponse, err)
	}
	return nil
}
