package rateplan

import (
	"testing"
	"time"

	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/fault"
)

func day(value string) time.Time {
	t, err := calendar.ParseLocal(value)
	if err != nil {
		panic(err)
	}
	return t
}

func activePlan(id string, adjType AdjustmentType, adjValue float64, priority int) *RatePlan {
	return &RatePlan{
		ID:              ID(id),
		PropertyID:      "prop-1",
		Name:            id,
		Type:            TypeFullyFlexible,
		AdjustmentType:  adjType,
		AdjustmentValue: adjValue,
		Priority:        priority,
		IsActive:        true,
	}
}

func twoNightStay(guests int) Stay {
	return Stay{
		CheckIn:   day("2025-06-10"),
		CheckOut:  day("2025-06-12"),
		NumGuests: guests,
	}
}

func TestStayNights(t *testing.T) {
	if got := twoNightStay(2).Nights(); got != 2 {
		t.Errorf("got %v nights, want 2", got)
	}
	half := Stay{CheckIn: day("2025-06-10"), IsHalfDay: true}
	if got := half.Nights(); got != 0.5 {
		t.Errorf("half-day stay: got %v nights, want 0.5", got)
	}
}

func TestEligibleOptionsRanksDeeperDiscountFirst(t *testing.T) {
	plans := []*RatePlan{
		activePlan("shallow", AdjustPercentage, -10, 1),
		activePlan("deep", AdjustPercentage, -20, 5),
		activePlan("surcharge", AdjustPercentage, 15, 1),
	}
	now := day("2025-06-01")

	options := EligibleOptions(plans, twoNightStay(2), 200, now)
	if len(options) != 3 {
		t.Fatalf("got %d options, want 3", len(options))
	}
	if options[0].Plan.ID != "deep" || options[1].Plan.ID != "shallow" || options[2].Plan.ID != "surcharge" {
		t.Fatalf("ranking %s,%s,%s; want deep,shallow,surcharge",
			options[0].Plan.ID, options[1].Plan.ID, options[2].Plan.ID)
	}
	if options[0].TotalPrice != 160 {
		t.Errorf("deep total %v, want 160", options[0].TotalPrice)
	}
	if options[0].Savings != 40 {
		t.Errorf("deep savings %v, want 40", options[0].Savings)
	}
	if options[2].TotalPrice != 230 {
		t.Errorf("surcharge total %v, want 230", options[2].TotalPrice)
	}
	if options[2].Savings != 0 {
		t.Errorf("surcharge savings %v, want 0", options[2].Savings)
	}
}

func TestEligibleOptionsPriorityBreaksTies(t *testing.T) {
	plans := []*RatePlan{
		activePlan("second", AdjustPercentage, 0, 2),
		activePlan("first", AdjustPercentage, 0, 1),
	}
	options := EligibleOptions(plans, twoNightStay(2), 200, day("2025-06-01"))
	if len(options) != 2 || options[0].Plan.ID != "first" {
		t.Fatalf("priority tie-break failed: %+v", options)
	}
}

func TestEligibleOptionsFilters(t *testing.T) {
	now := day("2025-06-01")
	stay := twoNightStay(2)

	inactive := activePlan("inactive", AdjustPercentage, 0, 1)
	inactive.IsActive = false

	minStay := activePlan("min-stay", AdjustPercentage, 0, 1)
	minStay.MinStay = 3

	maxStay := activePlan("max-stay", AdjustPercentage, 0, 1)
	maxStay.MaxStay = 1

	guests := activePlan("guests", AdjustPercentage, 0, 1)
	guests.MinGuests = 4

	advance := activePlan("advance", AdjustPercentage, 0, 1)
	advance.MinAdvanceBookingDays = 30

	keeper := activePlan("keeper", AdjustPercentage, 0, 9)

	options := EligibleOptions([]*RatePlan{inactive, minStay, maxStay, guests, advance, keeper}, stay, 200, now)
	if len(options) != 1 || options[0].Plan.ID != "keeper" {
		t.Fatalf("expected only keeper, got %+v", options)
	}
}

func TestEligibleOptionsFixedAdjustmentPerNight(t *testing.T) {
	plans := []*RatePlan{activePlan("fixed", AdjustFixed, -15, 1)}

	options := EligibleOptions(plans, twoNightStay(2), 200, day("2025-06-01"))
	if len(options) != 1 {
		t.Fatalf("got %d options, want 1", len(options))
	}
	if options[0].TotalPrice != 170 {
		t.Errorf("two nights at -15/night: total %v, want 170", options[0].TotalPrice)
	}

	half := Stay{CheckIn: day("2025-06-10"), NumGuests: 2, IsHalfDay: true}
	options = EligibleOptions(plans, half, 60, day("2025-06-01"))
	if len(options) != 1 {
		t.Fatalf("half-day: got %d options, want 1", len(options))
	}
	if options[0].TotalPrice != 52.5 {
		t.Errorf("half-day carries half the fixed adjustment: total %v, want 52.5", options[0].TotalPrice)
	}
}

func TestEligibleOptionsFloorsAtZero(t *testing.T) {
	plans := []*RatePlan{activePlan("deep-fixed", AdjustFixed, -500, 1)}
	options := EligibleOptions(plans, twoNightStay(2), 200, day("2025-06-01"))
	if len(options) != 1 || options[0].TotalPrice != 0 {
		t.Fatalf("total must floor at zero, got %+v", options)
	}
}

func TestAutoSelect(t *testing.T) {
	options := []Option{
		{Plan: RatePlan{ID: "best"}},
		{Plan: RatePlan{ID: "previous"}},
	}
	if got := AutoSelect("previous", options); got != "previous" {
		t.Errorf("still-eligible previous selection must stick, got %q", got)
	}
	if got := AutoSelect("gone", options); got != "best" {
		t.Errorf("fallback to top-ranked, got %q", got)
	}
	if got := AutoSelect("anything", nil); got != "" {
		t.Errorf("no options clears the selection, got %q", got)
	}
}

func TestPriceValidate(t *testing.T) {
	today := day("2025-06-10")

	valid := Price{RatePlanID: "rp-1", Date: day("2025-06-10"), Amount: 99.5}
	if err := valid.Validate(today); err != nil {
		t.Errorf("today with valid amount: %v", err)
	}

	past := Price{RatePlanID: "rp-1", Date: day("2025-06-09"), Amount: 99.5}
	if err := past.Validate(today); !fault.IsKind(err, fault.KindPastDate) {
		t.Errorf("past date: got %v", err)
	}

	for _, amount := range []float64{0, -5, 100000} {
		p := Price{RatePlanID: "rp-1", Date: day("2025-06-11"), Amount: amount}
		if err := p.Validate(today); !fault.IsKind(err, fault.KindInvalidInput) {
			t.Errorf("amount %v: got %v", amount, err)
		}
	}
}
