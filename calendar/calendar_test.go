package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/calendar"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func TestOccurrencesBetween(t *testing.T) {
	tests := []struct {
		name  string
		freq  calendar.Frequency
		start time.Time
		end   time.Time
		want  int
	}{
		{"daily 10 days", calendar.Daily, day0, dayN(10), 10},
		{"weekly 70 days", calendar.Weekly, day0, dayN(70), 10},
		{"weekly 69 days", calendar.Weekly, day0, dayN(69), 9},
		{"monthly 59 days", calendar.Monthly, day0, dayN(59), 1},
		{"monthly 60 days", calendar.Monthly, day0, dayN(60), 2},
		{"quarterly 365 days", calendar.Quarterly, day0, dayN(365), 4},
		{"biannual 365 days", calendar.Biannual, day0, dayN(365), 2},
		{"same instant", calendar.Daily, day0, day0, 0},
		{"unknown frequency", calendar.Frequency("hourly"), day0, dayN(10), 0},
		// time of day is ignored
		{"late start early end", calendar.Daily, day0.Add(23 * time.Hour), dayN(3).Add(time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.OccurrencesBetween(tt.freq, tt.start, tt.end))
		})
	}
}

func TestOccurrencesBetween_ReversedWindowIsZero(t *testing.T) {
	for _, f := range calendar.Frequencies() {
		assert.Equal(t, 0, calendar.OccurrencesBetween(f, dayN(100), day0), string(f))
	}
}

func TestDaysBetween_IgnoresDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// spans the March 2025 clock change
	start := time.Date(2025, 3, 29, 0, 0, 0, 0, loc)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, calendar.DaysBetween(start, end))
	assert.Equal(t, -2, calendar.DaysBetween(end, start))
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, calendar.CeilDays(day0, day0))
	assert.Equal(t, 1, calendar.CeilDays(day0, day0.Add(time.Minute)))
	assert.Equal(t, 1, calendar.CeilDays(day0, dayN(1)))
	assert.Equal(t, 2, calendar.CeilDays(day0, dayN(1).Add(time.Second)))
	assert.Equal(t, -1, calendar.CeilDays(dayN(1).Add(12*time.Hour), day0))
}

func TestTripProgressPercent(t *testing.T) {
	start, end := day0, dayN(10)

	assert.Equal(t, 0, calendar.TripProgressPercent(start, end, day0.Add(-time.Hour)))
	assert.Equal(t, 100, calendar.TripProgressPercent(start, end, dayN(11)))
	assert.Equal(t, 0, calendar.TripProgressPercent(start, end, day0))
	assert.Equal(t, 30, calendar.TripProgressPercent(start, end, dayN(3).Add(5*time.Hour)))
	assert.Equal(t, 100, calendar.TripProgressPercent(start, end, dayN(10)))

	// a single-day trip that is under way is complete
	assert.Equal(t, 100, calendar.TripProgressPercent(day0, day0.Add(time.Hour), day0.Add(30*time.Minute)))
}

func TestIsActiveToday(t *testing.T) {
	start := day0.Add(15 * time.Hour)
	end := dayN(5).Add(9 * time.Hour)

	assert.True(t, calendar.IsActiveToday(start, end, day0.Add(time.Hour)))
	assert.True(t, calendar.IsActiveToday(start, end, dayN(5).Add(23*time.Hour)))
	assert.False(t, calendar.IsActiveToday(start, end, dayN(6)))
	assert.False(t, calendar.IsActiveToday(start, end, dayN(-1).Add(23*time.Hour)))
}

func TestTripDurationAndDaysRemaining(t *testing.T) {
	assert.Equal(t, 1, calendar.TripDuration(day0, day0))
	assert.Equal(t, 11, calendar.TripDuration(day0, dayN(10)))
	assert.Equal(t, 11, calendar.TripDuration(dayN(10), day0))

	assert.Equal(t, 7, calendar.DaysRemaining(dayN(10), dayN(3)))
	assert.Equal(t, 0, calendar.DaysRemaining(dayN(3), dayN(10)))
}

func TestNextOccurrence(t *testing.T) {
	assert.Equal(t, dayN(7), calendar.NextOccurrence(day0, calendar.Weekly))
	assert.Equal(t, dayN(30), calendar.NextOccurrence(day0, calendar.Monthly))
	assert.Equal(t, dayN(180), calendar.NextOccurrence(day0, calendar.Biannual))
}

func TestParseFrequency(t *testing.T) {
	for _, f := range calendar.Frequencies() {
		got, err := calendar.ParseFrequency(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.True(t, got.Valid())
	}
	_, err := calendar.ParseFrequency("yearly")
	assert.Error(t, err)
}

func TestStartEndOfDay(t *testing.T) {
	noon := day0.Add(12 * time.Hour)
	assert.Equal(t, day0, calendar.StartOfDay(noon))
	assert.Equal(t, dayN(1).Add(-time.Nanosecond), calendar.EndOfDay(noon))
}
