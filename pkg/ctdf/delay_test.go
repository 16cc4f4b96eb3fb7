package ctdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	transportAPI, err := ParseTime("2024-03-01T10:05:00+0100")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC).UnixMilli(), transportAPI.UnixMilli())

	ojp, err := ParseTime("2024-03-01T09:05:00Z")
	require.NoError(t, err)
	assert.True(t, transportAPI.Equal(ojp))

	fractional, err := ParseTime("2024-03-01T09:05:00.500Z")
	require.NoError(t, err)
	assert.Equal(t, ojp.UnixMilli()+500, fractional.UnixMilli())

	_, err = ParseTime("")
	assert.ErrorIs(t, err, ErrEmptyTime)

	_, err = ParseTime("10:05")
	assert.Error(t, err)
}

func TestDelay(t *testing.T) {
	planned := "2024-03-01T10:00:00+0100"

	tests := []struct {
		name      string
		estimated string
		expected  int
	}{
		{"on time", "2024-03-01T10:00:00+0100", 0},
		{"two minutes late", "2024-03-01T10:02:00+0100", 2},
		{"half minute rounds up", "2024-03-01T10:02:30+0100", 3},
		{"just under half rounds down", "2024-03-01T10:02:29+0100", 2},
		{"early", "2024-03-01T09:59:00+0100", -1},
		{"early half rounds towards zero", "2024-03-01T09:57:30+0100", -2},
		{"different zone notation", "2024-03-01T09:04:00Z", 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			estimated := test.estimated
			assert.Equal(t, test.expected, Delay(&planned, &estimated))
		})
	}
}

func TestDelayMissingInput(t *testing.T) {
	value := "2024-03-01T10:00:00+0100"
	invalid := "not a time"
	empty := ""

	assert.Equal(t, 0, Delay(nil, &value))
	assert.Equal(t, 0, Delay(&value, nil))
	assert.Equal(t, 0, Delay(nil, nil))
	assert.Equal(t, 0, Delay(&invalid, &value))
	assert.Equal(t, 0, Delay(&value, &empty))
}

func TestDelayAcrossDaylightSavingChange(t *testing.T) {
	// 01:59 CET and 03:01 CEST are two minutes apart
	planned := "2024-03-31T01:59:00+0100"
	estimated := "2024-03-31T03:01:00+0200"

	assert.Equal(t, 2, Delay(&planned, &estimated))
}

func TestMinutesUntil(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 30, 0, time.UTC)

	minutes, ok := MinutesUntil("2024-03-01T10:05:00+0100", now)
	require.True(t, ok)
	assert.Equal(t, 4, minutes)

	minutes, ok = MinutesUntil("2024-03-01T10:00:00+0100", now)
	require.True(t, ok)
	assert.Equal(t, -1, minutes)

	_, ok = MinutesUntil("", now)
	assert.False(t, ok)
}

func TestDelayStatusFor(t *testing.T) {
	assert.Equal(t, DelayStatusOnTime, DelayStatusFor(0))
	assert.Equal(t, DelayStatusMinor, DelayStatusFor(1))
	assert.Equal(t, DelayStatusMinor, DelayStatusFor(3))
	assert.Equal(t, DelayStatusMajor, DelayStatusFor(4))
	assert.Equal(t, DelayStatusMajor, DelayStatusFor(-2))
}
