package ctdf

import (
	"errors"
	"math"
	"time"
)

// The journey planner API omits the colon in the zone offset, OJP sends RFC3339
const TransportAPIDateTimeFormat = "2006-01-02T15:04:05-0700"

var timeLayouts = []string{
	time.RFC3339Nano,
	TransportAPIDateTimeFormat,
}

var ErrEmptyTime = errors.New("empty time value")

func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrEmptyTime
	}

	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

// ParseTimePointer is ParseTime for optional values, ok is false when the value is missing or invalid
func ParseTimePointer(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}

	parsed, err := ParseTime(*value)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}

// Timestamp returns the epoch milliseconds of an ISO-8601 time string
func Timestamp(value string) (int64, bool) {
	parsed, err := ParseTime(value)
	if err != nil {
		return 0, false
	}
	return parsed.UnixMilli(), true
}

// Delay is the difference between estimated and planned time in whole minutes.
// Halves round up. Unknown or invalid input on either side is no delay.
func Delay(planned *string, estimated *string) int {
	plannedTime, ok := ParseTimePointer(planned)
	if !ok {
		return 0
	}
	estimatedTime, ok := ParseTimePointer(estimated)
	if !ok {
		return 0
	}

	delayMilliseconds := estimatedTime.UnixMilli() - plannedTime.UnixMilli()

	return int(math.Floor(float64(delayMilliseconds)/60000 + 0.5))
}

// MinutesUntil is the number of whole minutes (rounded down) from now until the given time
func MinutesUntil(value string, now time.Time) (int, bool) {
	parsed, err := ParseTime(value)
	if err != nil {
		return 0, false
	}

	difference := parsed.UnixMilli() - now.UnixMilli()

	return int(math.Floor(float64(difference) / 60000)), true
}

type DelayStatus string

const (
	DelayStatusOnTime DelayStatus = "OnTime"
	DelayStatusMinor  DelayStatus = "Minor"
	DelayStatusMajor  DelayStatus = "Major"
)

func DelayStatusFor(delay int) DelayStatus {
	switch {
	case delay == 0:
		return DelayStatusOnTime
	case delay > 0 && delay <= 3:
		return DelayStatusMinor
	default:
		return DelayStatusMajor
	}
}
