package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDateRange(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d, h, min, s int) time.Time {
		return time.Date(y, m, d, h, min, s, 0, time.UTC)
	}

	cases := []struct {
		name       string
		preset     string
		start, end string
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{"daily", DateRangeDaily, "", "", day(2025, 3, 12, 0, 0, 0), day(2025, 3, 12, 23, 59, 59)},
		{"weekly", DateRangeWeekly, "", "", day(2025, 3, 6, 0, 0, 0), day(2025, 3, 12, 23, 59, 59)},
		{"monthly", DateRangeMonthly, "", "", day(2025, 3, 1, 0, 0, 0), day(2025, 3, 31, 23, 59, 59)},
		{"yearly", DateRangeYearly, "", "", day(2025, 1, 1, 0, 0, 0), day(2025, 12, 31, 23, 59, 59)},
		{"custom", DateRangeCustom, "2025-02-01", "2025-02-03", day(2025, 2, 1, 0, 0, 0), day(2025, 2, 3, 23, 59, 59)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := GetDateRange(tc.preset, tc.start, tc.end, now)
			require.NoError(t, err)
			assert.True(t, tc.wantStart.Equal(*start), "start %s", start)
			assert.True(t, tc.wantEnd.Equal(*end), "end %s", end)
		})
	}
}

func TestGetDateRangeAllIsUnbounded(t *testing.T) {
	for _, preset := range []string{"", DateRangeAll} {
		start, end, err := GetDateRange(preset, "", "", time.Now())
		require.NoError(t, err)
		assert.Nil(t, start)
		assert.Nil(t, end)
	}
}

func TestGetDateRangeRejects(t *testing.T) {
	now := time.Now()
	for _, tc := range []struct{ preset, start, end string }{
		{"fortnightly", "", ""},
		{DateRangeCustom, "", "2025-01-01"},
		{DateRangeCustom, "01/02/2025", "2025-01-03"},
		{DateRangeCustom, "2025-02-05", "2025-02-01"},
	} {
		_, _, err := GetDateRange(tc.preset, tc.start, tc.end, now)
		assert.ErrorIs(t, err, ErrInvalidDateRange, "%+v", tc)
	}
}
