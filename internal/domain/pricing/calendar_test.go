package pricing

import (
	"testing"
	"time"

	"stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

func flatWeekly(full, half float64) WeeklyBasePricing {
	rates := make(map[calendar.Weekday]DayRate, len(calendar.Weekdays))
	for _, day := range calendar.Weekdays {
		rates[day] = DayRate{FullDay: full, HalfDay: half}
	}
	return WeeklyBasePricing{PropertyID: "prop-1", Rates: rates}
}

func day(value string) time.Time {
	t, err := calendar.ParseLocal(value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(v float64) *float64 { return &v }

func TestBuildCalendarOverridesWin(t *testing.T) {
	weekly := flatWeekly(100, 60)
	overrides := []DateOverride{
		{PropertyID: "prop-1", Date: day("2025-03-14"), FullDayPrice: 150, HalfDayPrice: ptr(90), Reason: "Eid"},
		{PropertyID: "prop-1", Date: day("2025-03-15"), FullDayPrice: 150, Reason: "Eid"},
	}

	days, err := BuildCalendar(weekly, overrides, day("2025-03-14"), day("2025-03-16"))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}

	first := days[0]
	if !first.IsOverride || first.FullDayPrice != 150 || first.HalfDayPrice != 90 {
		t.Errorf("2025-03-14: got %+v, want override 150/90", first)
	}
	if first.Reason != "Eid" {
		t.Errorf("2025-03-14: reason %q, want Eid", first.Reason)
	}

	// Override without a half-day price keeps the weekly half-day rate.
	second := days[1]
	if !second.IsOverride || second.FullDayPrice != 150 || second.HalfDayPrice != 60 {
		t.Errorf("2025-03-15: got %+v, want 150 full with weekly 60 half", second)
	}

	third := days[2]
	if third.IsOverride || third.FullDayPrice != 100 || third.HalfDayPrice != 60 {
		t.Errorf("2025-03-16: got %+v, want plain weekly day", third)
	}
}

func TestBuildCalendarReversedRange(t *testing.T) {
	weekly := flatWeekly(100, 60)
	if _, err := BuildCalendar(weekly, nil, day("2025-03-16"), day("2025-03-14")); !fault.IsKind(err, fault.KindInvalidRange) {
		t.Errorf("expected invalid range, got %v", err)
	}
}

func TestBuildPublicCalendarAvailability(t *testing.T) {
	weekly := flatWeekly(100, 60)
	slots := []availability.Slot{
		{PropertyID: "prop-1", Date: day("2025-03-15"), Status: availability.StatusBlocked},
		{PropertyID: "prop-1", Date: day("2025-03-16"), Status: availability.StatusAvailable},
	}

	result, err := BuildPublicCalendar(weekly, nil, slots, day("2025-03-14"), day("2025-03-16"))
	if err != nil {
		t.Fatalf("BuildPublicCalendar: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("got %d days, want 3", len(result))
	}
	// Dates without a slot record are open by default.
	if !result["2025-03-14"].IsAvailable {
		t.Errorf("2025-03-14 should default to available")
	}
	if result["2025-03-15"].IsAvailable {
		t.Errorf("2025-03-15 is blocked, reported available")
	}
	if !result["2025-03-16"].IsAvailable {
		t.Errorf("2025-03-16 is explicitly available")
	}
}

func TestBuildPublicCalendarCapsRange(t *testing.T) {
	weekly := flatWeekly(100, 60)
	start := day("2025-01-01")
	end := start.AddDate(0, 0, MaxPublicRangeDays+1)
	if _, err := BuildPublicCalendar(weekly, nil, nil, start, end); !fault.IsKind(err, fault.KindRangeTooLarge) {
		t.Errorf("expected range too large, got %v", err)
	}
	// Bounds exactly the cap apart are the widest allowed window.
	end = start.AddDate(0, 0, MaxPublicRangeDays)
	result, err := BuildPublicCalendar(weekly, nil, nil, start, end)
	if err != nil {
		t.Fatalf("span of %d days should pass, got %v", MaxPublicRangeDays, err)
	}
	if len(result) != MaxPublicRangeDays+1 {
		t.Errorf("got %d dates, want %d", len(result), MaxPublicRangeDays+1)
	}
}

func TestValidateOverrideBatchFailFast(t *testing.T) {
	today := day("2025-03-14")
	pid := property.ID("prop-1")

	cases := []struct {
		name      string
		overrides []DateOverride
		kind      fault.Kind
	}{
		{"empty", nil, fault.KindInvalidInput},
		{"past date", []DateOverride{{PropertyID: pid, Date: day("2025-03-13"), FullDayPrice: 100}}, fault.KindPastDate},
		{"negative price", []DateOverride{{PropertyID: pid, Date: day("2025-03-15"), FullDayPrice: -1}}, fault.KindInvalidInput},
		{"duplicate date", []DateOverride{
			{PropertyID: pid, Date: day("2025-03-15"), FullDayPrice: 100},
			{PropertyID: pid, Date: day("2025-03-15"), FullDayPrice: 120},
		}, fault.KindInvalidInput},
		{"one bad entry rejects all", []DateOverride{
			{PropertyID: pid, Date: day("2025-03-15"), FullDayPrice: 100},
			{PropertyID: pid, Date: day("2025-03-16"), FullDayPrice: -5},
		}, fault.KindInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOverrideBatch(tc.overrides, today)
			if !fault.IsKind(err, tc.kind) {
				t.Errorf("got %v, want kind %v", err, tc.kind)
			}
		})
	}
}

func TestValidateOverrideBatchTooLarge(t *testing.T) {
	today := day("2025-03-14")
	overrides := make([]DateOverride, 0, MaxOverrideBatch+1)
	for i := 0; i <= MaxOverrideBatch; i++ {
		overrides = append(overrides, DateOverride{
			PropertyID:   "prop-1",
			Date:         today.AddDate(0, 0, i+1),
			FullDayPrice: 100,
		})
	}
	if err := ValidateOverrideBatch(overrides, today); !fault.IsKind(err, fault.KindRangeTooLarge) {
		t.Errorf("expected range too large, got %v", err)
	}
}

func TestValidateOverrideBatchAcceptsToday(t *testing.T) {
	today := day("2025-03-14")
	overrides := []DateOverride{{PropertyID: "prop-1", Date: today, FullDayPrice: 100}}
	if err := ValidateOverrideBatch(overrides, today); err != nil {
		t.Errorf("today must be settable, got %v", err)
	}
}
