// Package dateutil parses and expands the calendar dates the rate cache is
// keyed by. Dates carry no time component; they are normalized to UTC midnight
// so they compare and map-key cleanly.
package dateutil

import (
	"fmt"
	"time"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
)

// DateFormat is the only accepted textual date layout.
const DateFormat = "2006-01-02"

// MinDate is the earliest date the upstream provider has rate history for.
var MinDate = time.Date(1999, time.January, 4, 0, 0, 0, 0, time.UTC)

// ParseDate parses text in strict YYYY-MM-DD form. time.Parse alone accepts
// unpadded fields like "2023-1-1", so the parsed date is re-formatted and
// compared against the input to pin the exact shape.
func ParseDate(text string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateFormat, text, time.UTC)
	if err != nil || parsed.Format(DateFormat) != text {
		return time.Time{}, fmt.Errorf("%w: %q, expected format: %s", apperrors.ErrInvalidDateFormat, text, DateFormat)
	}
	return parsed, nil
}

// Today returns the current UTC calendar date at midnight.
func Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate drops the time component of t, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatesInRange expands an inclusive [start, end] interval into every calendar
// day it contains. Callers validate start <= end first; an inverted range
// yields an empty slice.
func DatesInRange(start, end time.Time) []time.Time {
	start, end = Truncate(start), Truncate(end)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
