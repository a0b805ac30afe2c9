package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{"disjoint", New(at(9, 0), at(10, 0)), New(at(11, 0), at(12, 0)), false},
		{"touching is not overlapping", New(at(9, 0), at(10, 0)), New(at(10, 0), at(11, 0)), false},
		{"partial", New(at(9, 0), at(10, 30)), New(at(10, 0), at(11, 0)), true},
		{"contained", New(at(9, 0), at(12, 0)), New(at(10, 0), at(11, 0)), true},
		{"identical", New(at(9, 0), at(10, 0)), New(at(9, 0), at(10, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.expected, Overlaps(tt.b, tt.a))
		})
	}
}

func TestIntersect(t *testing.T) {
	common, ok := Intersect(New(at(9, 0), at(12, 0)), New(at(10, 0), at(13, 0)))
	require.True(t, ok)
	assert.True(t, common.Equal(New(at(10, 0), at(12, 0))))

	_, ok = Intersect(New(at(9, 0), at(10, 0)), New(at(10, 0), at(11, 0)))
	assert.False(t, ok, "touching intervals have an empty intersection")

	_, ok = Intersect(New(at(9, 0), at(10, 0)), New(at(14, 0), at(15, 0)))
	assert.False(t, ok)
}

func TestOverlapDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, OverlapDuration(New(at(9, 0), at(10, 0)), New(at(9, 30), at(11, 0))))
	assert.Equal(t, time.Duration(0), OverlapDuration(New(at(9, 0), at(10, 0)), New(at(10, 0), at(11, 0))))
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 60, DurationMinutes(at(9, 0), at(10, 0)))
	assert.Equal(t, 1, DurationMinutes(at(9, 0), at(9, 0).Add(89*time.Second)))
	assert.Equal(t, 2, DurationMinutes(at(9, 0), at(9, 0).Add(90*time.Second)))
	assert.Equal(t, 0, DurationMinutes(at(9, 0), at(9, 0)))
}

func TestRoundToGranularity(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		minutes  int
		expected time.Time
	}{
		{"already aligned", at(9, 30), 15, at(9, 30)},
		{"round down", at(9, 7), 15, at(9, 0)},
		{"halfway rounds up", at(9, 7).Add(30 * time.Second), 15, at(9, 15)},
		{"round up", at(9, 53), 15, at(10, 0)},
		{"carry past midnight", at(23, 50), 30, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"seconds dropped", at(9, 0).Add(20 * time.Second), 30, at(9, 0)},
		{"zero granularity is identity", at(9, 7), 0, at(9, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToGranularity(tt.input, tt.minutes)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestRoundToGranularity_HalfHourOffsetZone(t *testing.T) {
	kolkata, ok := LoadLocation("Asia/Kolkata")
	require.True(t, ok)

	// 09:07 local in a +05:30 zone rounds within the local hour.
	input := time.Date(2025, 3, 10, 9, 7, 0, 0, kolkata)
	got := RoundToGranularity(input, 15)
	assert.Equal(t, "09:00", got.Format("15:04"))
}

func TestAddBuffers(t *testing.T) {
	got := AddBuffers(New(at(10, 0), at(11, 0)), 15*time.Minute, 10*time.Minute)
	assert.True(t, got.Equal(New(at(9, 45), at(11, 10))))
}

func TestInterval_Contains(t *testing.T) {
	iv := New(at(9, 0), at(10, 0))
	assert.True(t, iv.Contains(at(9, 0)))
	assert.True(t, iv.Contains(at(9, 59)))
	assert.False(t, iv.Contains(at(10, 0)))
	assert.True(t, iv.Valid())
	assert.False(t, New(at(10, 0), at(10, 0)).Valid())
}
