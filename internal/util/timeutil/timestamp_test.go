package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayConversions(t *testing.T) {
	tests := []struct {
		date string
		days int64
	}{
		{"1970-01-01", 0},
		{"1970-01-02", 1},
		{"1969-12-31", -1},
		{"2024-12-20", 20077},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			days, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.days, days)
			assert.Equal(t, tt.date, FormatDate(tt.days))
		})
	}

	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestTimestampConversions(t *testing.T) {
	micros, err := ParseTimestamp("2024-12-20 10:30:45.123456")
	require.NoError(t, err)

	expected := time.Date(2024, 12, 20, 10, 30, 45, 123456000, time.UTC)
	assert.Equal(t, expected.UnixMicro(), micros)
	assert.Equal(t, "2024-12-20 10:30:45.123", FormatTimestamp(micros, 3))
	assert.Equal(t, "2024-12-20 10:30:45.123456", FormatTimestamp(micros, 6))
	assert.Equal(t, "2024-12-20 10:30:45", FormatTimestamp(micros, 0))
	assert.Equal(t, int64(20077), MicrosToDays(micros))

	micros, err = ParseTimestamp("2024-12-20")
	require.NoError(t, err)
	assert.Equal(t, int64(20077)*MicrosPerDay, micros)

	_, err = ParseTimestamp("not a timestamp")
	assert.Error(t, err)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(-1), FloorDiv(-1, MicrosPerDay))
	assert.Equal(t, int64(0), FloorDiv(1, MicrosPerDay))
	assert.Equal(t, int64(-2), FloorDiv(-4, 2))
	assert.Equal(t, int64(-3), FloorDiv(-5, 2))
}

func TestYear(t *testing.T) {
	assert.Equal(t, int64(1970), Year(0))
	assert.Equal(t, int64(2024), Year(20077))
	assert.Equal(t, int64(1969), Year(-1))
}
