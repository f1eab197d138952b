package leasing

import "time"

// DefaultTimezone is the platform civil timezone all schedule math runs in.
const DefaultTimezone = "Asia/Manila"

// Calendar yields the current civil date. Implementations must return a
// date-only value as produced by DateOf, never a wall-clock instant.
type Calendar interface {
	Today() time.Time
}

// LocationCalendar derives the civil date from the system clock in a fixed location.
type LocationCalendar struct {
	loc *time.Location
}

// NewLocationCalendar loads the named timezone.
func NewLocationCalendar(name string) (LocationCalendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return LocationCalendar{}, err
	}
	return LocationCalendar{loc: loc}, nil
}

// Today returns the current civil date in the calendar's location.
func (c LocationCalendar) Today() time.Time {
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// DateOf truncates an instant to its civil date, normalized to UTC midnight.
// Date-only values compare and subtract cleanly regardless of source zone.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays advances a civil date by whole days.
func AddDays(date time.Time, days int) time.Time {
	return DateOf(date.AddDate(0, 0, days))
}

// DaysBetween returns to minus from in whole calendar days.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// MonthDay builds the civil date for day-of-month in the given month, clamping
// to the month's last day when day exceeds it (dueDay=31 in February resolves
// to the 28th or 29th). months may roll the anchor month forward.
func MonthDay(year int, month time.Month, months int, day int) time.Time {
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := anchor.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
}
