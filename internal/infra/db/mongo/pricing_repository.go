package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

// WeeklyPricingRepository persists one base pricing document per property.
type WeeklyPricingRepository struct {
	col *mongo.Collection
}

func NewWeeklyPricingRepository(db *mongo.Database) *WeeklyPricingRepository {
	return &WeeklyPricingRepository{col: db.Collection("weekly_pricing")}
}

func (r *WeeklyPricingRepository) ByProperty(ctx context.Context, id domainproperty.ID) (domainpricing.WeeklyBasePricing, error) {
	var doc weeklyPricingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainpricing.WeeklyBasePricing{}, fault.NotFound("weekly pricing not configured for property %s", id)
		}
		return domainpricing.WeeklyBasePricing{}, err
	}
	return doc.toAggregate(), nil
}

func (r *WeeklyPricingRepository) Replace(ctx context.Context, pricing domainpricing.WeeklyBasePricing) error {
	doc := newWeeklyPricingDocument(pricing)
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

type dayRateDocument struct {
	FullDay float64 `bson:"full_day"`
	HalfDay float64 `bson:"half_day"`
}

type weeklyPricingDocument struct {
	ID        string                     `bson:"_id"`
	Rates     map[string]dayRateDocument `bson:"rates"`
	UpdatedAt int64                      `bson:"updated_at"`
}

func newWeeklyPricingDocument(p domainpricing.WeeklyBasePricing) weeklyPricingDocument {
	rates := make(map[string]dayRateDocument, len(p.Rates))
	for day, rate := range p.Rates {
		rates[string(day)] = dayRateDocument{FullDay: rate.FullDay, HalfDay: rate.HalfDay}
	}
	return weeklyPricingDocument{
		ID:        string(p.PropertyID),
		Rates:     rates,
		UpdatedAt: p.UpdatedAt.UnixMilli(),
	}
}

func (d weeklyPricingDocument) toAggregate() domainpricing.WeeklyBasePricing {
	rates := make(map[calendar.Weekday]domainpricing.DayRate, len(d.Rates))
	for day, rate := range d.Rates {
		rates[calendar.Weekday(day)] = domainpricing.DayRate{FullDay: rate.FullDay, HalfDay: rate.HalfDay}
	}
	return domainpricing.WeeklyBasePricing{
		PropertyID: domainproperty.ID(d.ID),
		Rates:      rates,
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}
}

// OverrideRepository persists date overrides, one document per
// (property, date), keyed by the concatenated identifier.
type OverrideRepository struct {
	col *mongo.Collection
}

func NewOverrideRepository(db *mongo.Database) *OverrideRepository {
	return &OverrideRepository{col: db.Collection("date_overrides")}
}

func (r *OverrideRepository) Range(ctx context.Context, id domainproperty.ID, start, end time.Time) ([]domainpricing.DateOverride, error) {
	filter := bson.M{"property_id": string(id)}
	if dateFilter := dateRangeFilter(start, end); dateFilter != nil {
		filter["date"] = dateFilter
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	overrides := make([]domainpricing.DateOverride, 0)
	for cursor.Next(ctx) {
		var doc overrideDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		override, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}
	return overrides, cursor.Err()
}

func (r *OverrideRepository) ReplaceMany(ctx context.Context, overrides []domainpricing.DateOverride) error {
	for _, override := range overrides {
		doc := newOverrideDocument(override)
		update := bson.M{"$set": doc}
		opts := options.Update().SetUpsert(true)
		if _, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts); err != nil {
			return err
		}
	}
	return nil
}

func (r *OverrideRepository) DeleteMany(ctx context.Context, id domainproperty.ID, dates []time.Time) (int, error) {
	keys := make([]string, 0, len(dates))
	for _, date := range dates {
		keys = append(keys, overrideKey(id, date))
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type overrideDocument struct {
	ID           string   `bson:"_id"`
	PropertyID   string   `bson:"property_id"`
	Date         string   `bson:"date"`
	FullDayPrice float64  `bson:"full_day_price"`
	HalfDayPrice *float64 `bson:"half_day_price,omitempty"`
	Reason       string   `bson:"reason,omitempty"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newOverrideDocument(o domainpricing.DateOverride) overrideDocument {
	return overrideDocument{
		ID:           overrideKey(o.PropertyID, o.Date),
		PropertyID:   string(o.PropertyID),
		Date:         calendar.FormatLocal(calendar.Normalize(o.Date)),
		FullDayPrice: o.FullDayPrice,
		HalfDayPrice: o.HalfDayPrice,
		Reason:       o.Reason,
		UpdatedAt:    o.UpdatedAt.UnixMilli(),
	}
}

func (d overrideDocument) toAggregate() (domainpricing.DateOverride, error) {
	date, err := calendar.ParseLocal(d.Date)
	if err != nil {
		return domainpricing.DateOverride{}, err
	}
	return domainpricing.DateOverride{
		PropertyID:   domainproperty.ID(d.PropertyID),
		Date:         date,
		FullDayPrice: d.FullDayPrice,
		HalfDayPrice: d.HalfDayPrice,
		Reason:       d.Reason,
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}, nil
}

func overrideKey(id domainproperty.ID, date time.Time) string {
	return string(id) + ":" + calendar.FormatLocal(calendar.Normalize(date))
}

// dateRangeFilter builds the inclusive range condition over the string date
// field; lexicographic order matches calendar order for YYYY-MM-DD.
func dateRangeFilter(start, end time.Time) bson.M {
	filter := bson.M{}
	if !start.IsZero() {
		filter["$gte"] = calendar.FormatLocal(calendar.Normalize(start))
	}
	if !end.IsZero() {
		filter["$lte"] = calendar.FormatLocal(calendar.Normalize(end))
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}
