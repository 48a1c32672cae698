package ledger

import (
	"time"
)

// lastMilli is the final representable instant of a day at millisecond precision.
const lastMilli = 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).Add(lastMilli)
}

// DayBounds is the inclusive window covering one calendar day.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(day, loc), EndOfDay(day, loc)
}

// MonthBounds covers the first day start to the last day end of the month.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// day 0 of the next month is the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return first, last.Add(lastMilli)
}

// YearBounds covers Jan 1 00:00:00.000 through Dec 31 23:59:59.999.
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
	return first, last.Add(lastMilli)
}

// RangeBounds widens [start, end] to whole days.
func RangeBounds(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(start, loc), EndOfDay(end, loc)
}
