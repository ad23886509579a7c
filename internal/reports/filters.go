package reports

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// GetDateRange resolves a preset into a submission window relative to now.
// DateRangeAll (or an empty preset) yields a nil window. Custom ranges need
// startStr/endStr in "2006-01-02" format and include the entire end day.
func GetDateRange(dateRange, startStr, endStr string, now time.Time) (*time.Time, *time.Time, error) {
	loc := now.Location()
	span := func(start, end time.Time) (*time.Time, *time.Time, error) {
		return &start, &end, nil
	}

	switch dateRange {
	case "", DateRangeAll:
		return nil, nil, nil
	case DateRangeDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return span(start, start.AddDate(0, 0, 1).Add(-time.Second))
	case DateRangeWeekly:
		// last 7 days including today
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, loc)
		start := time.Date(now.Year(), now.Month(), now.Day()-6, 0, 0, 0, 0, loc)
		return span(start, end)
	case DateRangeMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return span(start, start.AddDate(0, 1, 0).Add(-time.Second))
	case DateRangeYearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return span(start, time.Date(now.Year(), 12, 31, 23, 59, 59, 0, loc))
	case DateRangeCustom:
		if startStr == "" || endStr == "" {
			return nil, nil, fmt.Errorf("%w: start_date and end_date required for custom range", ErrInvalidDateRange)
		}
		start, err := time.ParseInLocation("2006-01-02", startStr, loc)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		end, err := time.ParseInLocation("2006-01-02", endStr, loc)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		end = end.Add(24*time.Hour - time.Second)
		if start.After(end) {
			return nil, nil, fmt.Errorf("%w: start_date must be before end_date", ErrInvalidDateRange)
		}
		return span(start, end)
	default:
		return nil, nil, ErrInvalidDateRange
	}
}
