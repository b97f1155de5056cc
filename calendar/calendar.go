package calendar

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Biannual  Frequency = "biannual"
)

// Months are approximated as 30 days and quarters as 90.
var periodDays = map[Frequency]int{
	Daily:     1,
	Weekly:    7,
	Monthly:   30,
	Quarterly: 90,
	Biannual:  180,
}

// Frequencies lists every known frequency, shortest period first.
func Frequencies() []Frequency {
	return []Frequency{Daily, Weekly, Monthly, Quarterly, Biannual}
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if _, ok := periodDays[f]; !ok {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// PeriodDays is the length of one period in days, or 0 if f is unknown.
func (f Frequency) PeriodDays() int {
	return periodDays[f]
}

func (f Frequency) Valid() bool {
	return f.PeriodDays() > 0
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// civil maps t's local calendar date onto a UTC midnight so differences
// are whole days regardless of DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from start to end, ignoring time of
// day. The result is negative when end is on an earlier day.
func DaysBetween(start, end time.Time) int {
	return int(civil(end).Sub(civil(start)) / day)
}

// CeilDays is the number of started 24 hour periods between from and to.
func CeilDays(from, to time.Time) int {
	elapsed := to.Sub(from)
	days := int(elapsed / day)
	if elapsed%day > 0 {
		days++
	}
	return days
}

// OccurrencesBetween returns how many times a recurring item with
// frequency f falls due between start and end.
func OccurrencesBetween(f Frequency, start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	days := DaysBetween(start, end)
	period := f.PeriodDays()
	if days <= 0 || period == 0 {
		return 0
	}
	return days / period
}

// NextOccurrence returns the due date following last.
func NextOccurrence(last time.Time, f Frequency) time.Time {
	return last.AddDate(0, 0, f.PeriodDays())
}

// TripProgressPercent is how far now is through [start, end], 0 to 100.
func TripProgressPercent(start, end, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	if now.After(end) {
		return 100
	}
	total := DaysBetween(start, end)
	if total <= 0 {
		return 100
	}
	elapsed := DaysBetween(start, now)
	return int(math.Round(100 * float64(elapsed) / float64(total)))
}

// IsActiveToday reports whether now's day lies within the trip's days.
func IsActiveToday(start, end, now time.Time) bool {
	today := StartOfDay(now)
	return !today.Before(StartOfDay(start)) && !today.After(EndOfDay(end))
}

// TripDuration counts the days of a trip, both ends included.
func TripDuration(start, end time.Time) int {
	days := DaysBetween(start, end)
	if days < 0 {
		days = -days
	}
	return days + 1
}

// DaysRemaining is the number of calendar days from now until end.
func DaysRemaining(end, now time.Time) int {
	return max(0, DaysBetween(now, end))
}
