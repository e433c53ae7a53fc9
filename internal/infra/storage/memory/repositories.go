package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainavailability "stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/fault"
)

// PropertyRepository is an in-memory property store for demos and tests.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.ID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("property %s not found", id)
	}
	clone := *prop
	return &clone, nil
}

func (r *PropertyRepository) Save(ctx context.Context, prop *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *prop
	r.items[prop.ID] = &clone
	return nil
}

// WeeklyPricingRepository keeps one base pricing record per property.
type WeeklyPricingRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]domainpricing.WeeklyBasePricing
}

func NewWeeklyPricingRepository() *WeeklyPricingRepository {
	return &WeeklyPricingRepository{items: make(map[domainproperty.ID]domainpricing.WeeklyBasePricing)}
}

func (r *WeeklyPricingRepository) ByProperty(ctx context.Context, id domainproperty.ID) (domainpricing.WeeklyBasePricing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.items[id]
	if !ok {
		return domainpricing.WeeklyBasePricing{}, fault.NotFound("weekly pricing not configured for property %s", id)
	}
	return record.Copy(), nil
}

func (r *WeeklyPricingRepository) Replace(ctx context.Context, pricing domainpricing.WeeklyBasePricing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[pricing.PropertyID] = pricing.Copy()
	return nil
}

// OverrideRepository stores date overrides keyed (property, date).
type OverrideRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]map[string]domainpricing.DateOverride
}

func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{items: make(map[domainproperty.ID]map[string]domainpricing.DateOverride)}
}

func (r *OverrideRepository) Range(ctx context.Context, id domainproperty.ID, start, end time.Time) ([]domainpricing.DateOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainpricing.DateOverride, 0)
	for _, override := range r.items[id] {
		if inRange(override.Date, start, end) {
			matches = append(matches, override)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches, nil
}

func (r *OverrideRepository) ReplaceMany(ctx context.Context, overrides []domainpricing.DateOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, override := range overrides {
		byDate, ok := r.items[override.PropertyID]
		if !ok {
			byDate = make(map[string]domainpricing.DateOverride)
			r.items[override.PropertyID] = byDate
		}
		override.Date = calendar.Normalize(override.Date)
		byDate[calendar.FormatLocal(override.Date)] = override
	}
	return nil
}

func (r *OverrideRepository) DeleteMany(ctx context.Context, id domainproperty.ID, dates []time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDate := r.items[id]
	deleted := 0
	for _, date := range dates {
		key := calendar.FormatLocal(calendar.Normalize(date))
		if _, ok := byDate[key]; ok {
			delete(byDate, key)
			deleted++
		}
	}
	return deleted, nil
}

// RatePlanRepository stores rate plans in memory.
type RatePlanRepository struct {
	mu    sync.RWMutex
	items map[domainrateplan.ID]*domainrateplan.RatePlan
}

func NewRatePlanRepository() *RatePlanRepository {
	return &RatePlanRepository{items: make(map[domainrateplan.ID]*domainrateplan.RatePlan)}
}

func (r *RatePlanRepository) ByID(ctx context.Context, id domainrateplan.ID) (*domainrateplan.RatePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("rate plan %s not found", id)
	}
	clone := *plan
	return &clone, nil
}

func (r *RatePlanRepository) ByProperty(ctx context.Context, id domainproperty.ID) ([]*domainrateplan.RatePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrateplan.RatePlan, 0)
	for _, plan := range r.items {
		if plan.PropertyID != id {
			continue
		}
		clone := *plan
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority < matches[j].Priority
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *RatePlanRepository) Save(ctx context.Context, plan *domainrateplan.RatePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *plan
	r.items[plan.ID] = &clone
	return nil
}

// PriceRepository stores ledger entries keyed (rate plan, date).
type PriceRepository struct {
	mu    sync.RWMutex
	items map[domainrateplan.ID]map[string]domainrateplan.Price
}

func NewPriceRepository() *PriceRepository {
	return &PriceRepository{items: make(map[domainrateplan.ID]map[string]domainrateplan.Price)}
}

func (r *PriceRepository) Range(ctx context.Context, id domainrateplan.ID, start, end time.Time, limit, offset int) ([]domainrateplan.Price, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainrateplan.Price, 0)
	for _, price := range r.items[id] {
		if inRange(price.Date, start, end) {
			matches = append(matches, price)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	if offset > len(matches) {
		offset = len(matches)
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *PriceRepository) ByDate(ctx context.Context, id domainrateplan.ID, date time.Time) (*domainrateplan.Price, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	price, ok := r.items[id][calendar.FormatLocal(calendar.Normalize(date))]
	if !ok {
		return nil, fault.NotFound("no price for date %s", calendar.FormatLocal(date))
	}
	clone := price
	return &clone, nil
}

func (r *PriceRepository) Upsert(ctx context.Context, price domainrateplan.Price) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDate, ok := r.items[price.RatePlanID]
	if !ok {
		byDate = make(map[string]domainrateplan.Price)
		r.items[price.RatePlanID] = byDate
	}
	price.Date = calendar.Normalize(price.Date)
	byDate[calendar.FormatLocal(price.Date)] = price
	return nil
}

func (r *PriceRepository) Delete(ctx context.Context, id domainrateplan.ID, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := calendar.FormatLocal(calendar.Normalize(date))
	byDate := r.items[id]
	if _, ok := byDate[key]; !ok {
		return false, nil
	}
	delete(byDate, key)
	return true, nil
}

func (r *PriceRepository) DeleteRange(ctx context.Context, id domainrateplan.ID, start, end time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDate := r.items[id]
	deleted := 0
	for key, price := range byDate {
		if inRange(price.Date, start, end) {
			delete(byDate, key)
			deleted++
		}
	}
	return deleted, nil
}

// AvailabilityRepository stores slots keyed (property, date).
type AvailabilityRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]map[string]domainavailability.Slot
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{items: make(map[domainproperty.ID]map[string]domainavailability.Slot)}
}

func (r *AvailabilityRepository) Range(ctx context.Context, id domainproperty.ID, start, end time.Time) ([]domainavailability.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainavailability.Slot, 0)
	for _, slot := range r.items[id] {
		if inRange(slot.Date, start, end) {
			matches = append(matches, slot)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches, nil
}

func (r *AvailabilityRepository) Upsert(ctx context.Context, slot domainavailability.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDate, ok := r.items[slot.PropertyID]
	if !ok {
		byDate = make(map[string]domainavailability.Slot)
		r.items[slot.PropertyID] = byDate
	}
	slot.Date = calendar.Normalize(slot.Date)
	byDate[calendar.FormatLocal(slot.Date)] = slot
	return nil
}

// inRange checks the inclusive window; a zero bound leaves that side open.
func inRange(date, start, end time.Time) bool {
	date = calendar.Normalize(date)
	if !start.IsZero() && date.Before(calendar.Normalize(start)) {
		return false
	}
	if !end.IsZero() && date.After(calendar.Normalize(end)) {
		return false
	}
	return true
}
