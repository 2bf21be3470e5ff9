package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrInvalidDateFormat indicates that input text is not a valid YYYY-MM-DD date.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidRange indicates an invalid date interval (start after end, or start
// before the earliest date the provider has data for).
var ErrInvalidRange = errors.New("invalid date range")

// ErrUpstreamUnavailable indicates that the rate provider could not be reached
// or answered with a non-2xx status.
var ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

// ErrMalformedResponse indicates that the provider answered but the response is
// missing expected keys.
var ErrMalformedResponse = errors.New("malformed provider response")

// ErrPersistenceConflict indicates a store-level uniqueness violation that the
// conflict-tolerant insert could not absorb.
var ErrPersistenceConflict = errors.New("persistence conflict")
