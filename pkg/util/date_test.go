package util

import (
	"testing"
	"time"
)

func TestParseDateKey(t *testing.T) {
	s := "2025-10-10"
	got, ok := ParseDateKey(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if FormatDateKey(got) != s {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateKeyInvalid(t *testing.T) {
	if _, ok := ParseDateKey(""); ok {
		t.Fatalf("expected not ok for empty")
	}
	if _, ok := ParseDateKey("10/10/2025"); ok {
		t.Fatalf("expected not ok for wrong layout")
	}
}

func TestDayOfWeek(t *testing.T) {
	mon := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC) // Monday
	if DayOfWeek(mon) != 0 {
		t.Fatalf("expected Monday=0, got %d", DayOfWeek(mon))
	}
	sun := mon.AddDate(0, 0, 6)
	if DayOfWeek(sun) != 6 {
		t.Fatalf("expected Sunday=6, got %d", DayOfWeek(sun))
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2025, 10, 11, 0, 0, 0, 0, time.UTC)
	if !IsWeekend(sat) {
		t.Fatalf("expected saturday weekend")
	}
	if IsWeekend(sat.AddDate(0, 0, 2)) {
		t.Fatalf("monday is not weekend")
	}
}
