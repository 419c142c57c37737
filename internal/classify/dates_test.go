package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var now = time.Date(2025, time.March, 12, 15, 30, 0, 0, time.UTC)

func TestParseDateRange(t *testing.T) {
	cases := []struct {
		text       string
		start, end string
		kind       string
	}{
		{"giá VCB từ 01/02/2025 đến 28/02/2025", "2025-02-01", "2025-02-28", "custom_range"},
		{"giá FPT ngày 5-3-25", "2025-03-05", "2025-03-05", "single_date"},
		{"Giá VCB hôm nay", "2025-03-12", "2025-03-12", "named_period"},
		{"tin hôm qua", "2025-03-11", "2025-03-11", "named_period"},
		{"tuần này", "2025-03-10", "2025-03-12", "named_period"},
		{"tuần trước", "2025-03-03", "2025-03-09", "named_period"},
		{"tháng trước", "2025-02-01", "2025-02-28", "named_period"},
		{"năm nay", "2025-01-01", "2025-03-12", "named_period"},
		{"năm trước", "2024-01-01", "2024-12-31", "named_period"},
		{"Lịch sử giá VIC trong 3 tháng qua", "2024-12-12", "2025-03-12", "relative_period"},
		{"2 tuần gần đây", "2025-02-26", "2025-03-12", "relative_period"},
		{"lịch sử giá HPG", "2025-03-01", "2025-03-12", "default_recent"},
	}
	for _, tc := range cases {
		dr, ok := ParseDateRange(tc.text, now)
		require.True(t, ok, tc.text)
		assert.Equal(t, tc.start, dr.StartDate(), tc.text)
		assert.Equal(t, tc.end, dr.EndDate(), tc.text)
		assert.Equal(t, tc.kind, dr.Kind, tc.text)
	}
}

func TestParseDateRangeNone(t *testing.T) {
	_, ok := ParseDateRange("BCTC VIC 3 năm gần nhất", now)
	assert.False(t, ok)
}

func TestDateRangeToday(t *testing.T) {
	dr, ok := ParseDateRange("Giá VCB hôm nay", now)
	require.True(t, ok)
	assert.True(t, dr.Today())

	dr, _ = ParseDateRange("tuần này", now)
	assert.False(t, dr.Today())
}
