package util

import "time"

// DateKeyLayout is the calendar form used for per-day log keys.
const DateKeyLayout = "2006-01-02"

// ParseDateKey parses a YYYY-MM-DD date key. Returns (t, true) if valid.
func ParseDateKey(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateKey formats t as a YYYY-MM-DD date key.
func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DayOfWeek returns the weekday with Monday=0 .. Sunday=6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TodayKey returns today's date key in the given location.
func TodayKey(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FormatDateKey(time.Now().In(loc))
}
