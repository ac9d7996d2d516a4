package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Common time format strings
const (
	DateFormat          = "2006-01-02"
	DateTimeFormat      = "2006-01-02 15:04:05"
	DateTimeMicroFormat = "2006-01-02 15:04:05.000000"
)

const (
	// MicrosPerDay is the number of microseconds in a day
	MicrosPerDay = int64(24 * time.Hour / time.Microsecond)
)

// EpochUTC returns the Unix epoch time in UTC
func EpochUTC() time.Time {
	return time.Unix(0, 0).UTC()
}

// DaysToTime converts days since the epoch to a UTC midnight time
func DaysToTime(days int64) time.Time {
	return EpochUTC().AddDate(0, 0, int(days))
}

// TimeToDays converts t to days since the epoch, rounding toward negative infinity
func TimeToDays(t time.Time) int64 {
	return FloorDiv(MicrosSinceEpoch(t), MicrosPerDay)
}

// MicrosSinceEpoch converts t to microseconds since the epoch
func MicrosSinceEpoch(t time.Time) int64 {
	return t.UnixMicro()
}

// MicrosToTime converts microseconds since the epoch to a UTC time
func MicrosToTime(micros int64) time.Time {
	return time.UnixMicro(micros).UTC()
}

// MicrosToDays truncates a timestamp to its date
func MicrosToDays(micros int64) int64 {
	return FloorDiv(micros, MicrosPerDay)
}

// FloorDiv divides rounding toward negative infinity
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FormatDate renders days since the epoch as YYYY-MM-DD
func FormatDate(days int64) string {
	return DaysToTime(days).Format(DateFormat)
}

// FormatTimestamp renders microseconds since the epoch with the given number
// of fractional digits
func FormatTimestamp(micros int64, precision int) string {
	t := MicrosToTime(micros)
	if precision <= 0 {
		return t.Format(DateTimeFormat)
	}
	return t.Format(DateTimeMicroFormat[:len(DateTimeFormat)+1+min(precision, 6)])
}

// ParseTimestamp parses a timestamp literal into microseconds since the epoch
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999",
		DateTimeFormat,
		DateFormat,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return MicrosSinceEpoch(t), nil
		}
	}

	return 0, fmt.Errorf("unable to parse timestamp: %s", s)
}

// ParseDate parses a date literal into days since the epoch
func ParseDate(s string) (int64, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unable to parse date: %s", s)
	}
	return TimeToDays(t), nil
}

// Year returns the calendar year of days since the epoch
func Year(days int64) int64 {
	return int64(DaysToTime(days).Year())
}
