package calendar

import (
	"testing"
	"time"

	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
)

func TestParseLocal(t *testing.T) {
	got, err := ParseLocal("2025-03-14")
	if err != nil {
		t.Fatalf("ParseLocal: %v", err)
	}
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseLocalRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "14-03-2025", "2025/03/14", "2025-13-01", "not a date"} {
		if _, err := ParseLocal(raw); !fault.IsKind(err, fault.KindInvalidInput) {
			t.Errorf("ParseLocal(%q): expected invalid input, got %v", raw, err)
		}
	}
}

func TestNormalizeDropsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("plus5", 5*3600)
	in := time.Date(2025, 7, 1, 23, 45, 12, 999, loc)
	got := Normalize(in)
	want := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestToday(t *testing.T) {
	frozen := clock.Fixed{Instant: time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)}
	got := Today(frozen)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEnumerateInclusive(t *testing.T) {
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	dates, err := Enumerate(start, end)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
	if FormatLocal(dates[0]) != "2025-03-14" || FormatLocal(dates[2]) != "2025-03-16" {
		t.Errorf("unexpected bounds %s..%s", FormatLocal(dates[0]), FormatLocal(dates[2]))
	}
}

func TestEnumerateSingleDay(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	dates, err := Enumerate(day, day)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(dates) != 1 {
		t.Errorf("got %d dates, want 1", len(dates))
	}
}

func TestEnumerateReversedRange(t *testing.T) {
	start := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if _, err := Enumerate(start, end); !fault.IsKind(err, fault.KindInvalidRange) {
		t.Errorf("expected invalid range, got %v", err)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 21, 2, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestParseWeekday(t *testing.T) {
	for raw, want := range map[string]Weekday{
		"monday":    Monday,
		"Friday":    Friday,
		" SUNDAY ":  Sunday,
		"wednesday": Wednesday,
	} {
		got, err := ParseWeekday(raw)
		if err != nil {
			t.Errorf("ParseWeekday(%q): %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("ParseWeekday(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseWeekday("someday"); !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2025-03-14 is a Friday.
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if got := WeekdayOf(date); got != Friday {
		t.Errorf("got %q, want friday", got)
	}
}
