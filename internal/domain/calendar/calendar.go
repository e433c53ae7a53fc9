package calendar

import (
	"strings"
	"time"

	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
)

// LocalLayout is the wire format for calendar dates everywhere in the API.
const LocalLayout = "2006-01-02"

// Weekday keys index weekly base pricing records.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the seven keys in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// FormatLocal renders YYYY-MM-DD from the date's own components. It never
// shifts the calendar day through a timezone conversion.
func FormatLocal(t time.Time) string {
	return t.Format(LocalLayout)
}

// ParseLocal reads a YYYY-MM-DD string into a UTC-midnight date.
func ParseLocal(value string) (time.Time, error) {
	t, err := time.Parse(LocalLayout, value)
	if err != nil {
		return time.Time{}, fault.InvalidInput("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}

// Normalize truncates to UTC midnight, the canonical representation for
// every stored and compared date.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current date at UTC midnight using the provided clock.
func Today(c clock.Clock) time.Time {
	return Normalize(clock.OrSystem(c).Now().UTC())
}

// ParseWeekday reads a weekday name from the wire, case-insensitively.
func ParseWeekday(value string) (Weekday, error) {
	candidate := Weekday(strings.ToLower(strings.TrimSpace(value)))
	for _, day := range Weekdays {
		if day == candidate {
			return day, nil
		}
	}
	return "", fault.InvalidInput("unknown weekday %q", value)
}

// WeekdayOf maps a date to its weekly pricing key.
func WeekdayOf(t time.Time) Weekday {
	return weekdayNames[t.Weekday()]
}

// Enumerate lists every date in [start, end] inclusive, normalized to UTC
// midnight. Fails with an invalid-range fault when start is after end.
func Enumerate(start, end time.Time) ([]time.Time, error) {
	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return nil, fault.InvalidRange("start date %s is after end date %s", FormatLocal(start), FormatLocal(end))
	}
	dates := make([]time.Time, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// DaysBetween counts whole days from start to end after normalization.
func DaysBetween(start, end time.Time) int {
	return int(Normalize(end).Sub(Normalize(start)) / (24 * time.Hour))
}
