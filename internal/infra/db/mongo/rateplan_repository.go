package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayflow/internal/domain/calendar"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/fault"
)

type RatePlanRepository struct {
	col *mongo.Collection
}

func NewRatePlanRepository(db *mongo.Database) *RatePlanRepository {
	return &RatePlanRepository{col: db.Collection("rate_plans")}
}

func (r *RatePlanRepository) ByID(ctx context.Context, id domainrateplan.ID) (*domainrateplan.RatePlan, error) {
	var doc ratePlanDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fault.NotFound("rate plan %s not found", id)
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RatePlanRepository) ByProperty(ctx context.Context, id domainproperty.ID) ([]*domainrateplan.RatePlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"property_id": string(id)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := make([]*domainrateplan.RatePlan, 0)
	for cursor.Next(ctx) {
		var doc ratePlanDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		plans = append(plans, doc.toAggregate())
	}
	return plans, cursor.Err()
}

func (r *RatePlanRepository) Save(ctx context.Context, plan *domainrateplan.RatePlan) error {
	doc := newRatePlanDocument(plan)
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

type ratePlanDocument struct {
	ID                    string  `bson:"_id"`
	PropertyID            string  `bson:"property_id"`
	Name                  string  `bson:"name"`
	Type                  string  `bson:"type"`
	AdjustmentType        string  `bson:"adjustment_type"`
	AdjustmentValue       float64 `bson:"adjustment_value"`
	MinStay               float64 `bson:"min_stay"`
	MaxStay               float64 `bson:"max_stay"`
	MinGuests             int     `bson:"min_guests"`
	MaxGuests             int     `bson:"max_guests"`
	MinAdvanceBookingDays int     `bson:"min_advance_booking_days"`
	Priority              int     `bson:"priority"`
	IsActive              bool    `bson:"is_active"`
}

func newRatePlanDocument(p *domainrateplan.RatePlan) ratePlanDocument {
	return ratePlanDocument{
		ID:                    string(p.ID),
		PropertyID:            string(p.PropertyID),
		Name:                  p.Name,
		Type:                  string(p.Type),
		AdjustmentType:        string(p.AdjustmentType),
		AdjustmentValue:       p.AdjustmentValue,
		MinStay:               p.MinStay,
		MaxStay:               p.MaxStay,
		MinGuests:             p.MinGuests,
		MaxGuests:             p.MaxGuests,
		MinAdvanceBookingDays: p.MinAdvanceBookingDays,
		Priority:              p.Priority,
		IsActive:              p.IsActive,
	}
}

func (d ratePlanDocument) toAggregate() *domainrateplan.RatePlan {
	return &domainrateplan.RatePlan{
		ID:                    domainrateplan.ID(d.ID),
		PropertyID:            domainproperty.ID(d.PropertyID),
		Name:                  d.Name,
		Type:                  domainrateplan.PlanType(d.Type),
		AdjustmentType:        domainrateplan.AdjustmentType(d.AdjustmentType),
		AdjustmentValue:       d.AdjustmentValue,
		MinStay:               d.MinStay,
		MaxStay:               d.MaxStay,
		MinGuests:             d.MinGuests,
		MaxGuests:             d.MaxGuests,
		MinAdvanceBookingDays: d.MinAdvanceBookingDays,
		Priority:              d.Priority,
		IsActive:              d.IsActive,
	}
}

// PriceRepository persists ledger entries, one document per
// (rate plan, date).
type PriceRepository struct {
	col *mongo.Collection
}

func NewPriceRepository(db *mongo.Database) *PriceRepository {
	return &PriceRepository{col: db.Collection("rate_plan_prices")}
}

func (r *PriceRepository) Range(ctx context.Context, id domainrateplan.ID, start, end time.Time, limit, offset int) ([]domainrateplan.Price, error) {
	filter := bson.M{"rate_plan_id": string(id)}
	if dateFilter := dateRangeFilter(start, end); dateFilter != nil {
		filter["date"] = dateFilter
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	prices := make([]domainrateplan.Price, 0)
	for cursor.Next(ctx) {
		var doc priceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		price, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		prices = append(prices, price)
	}
	return prices, cursor.Err()
}

func (r *PriceRepository) ByDate(ctx context.Context, id domainrateplan.ID, date time.Time) (*domainrateplan.Price, error) {
	var doc priceDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": priceKey(id, date)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fault.NotFound("no price for date %s", calendar.FormatLocal(date))
		}
		return nil, err
	}
	price, err := doc.toAggregate()
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *PriceRepository) Upsert(ctx context.Context, price domainrateplan.Price) error {
	doc := newPriceDocument(price)
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

func (r *PriceRepository) Delete(ctx context.Context, id domainrateplan.ID, date time.Time) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": priceKey(id, date)})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *PriceRepository) DeleteRange(ctx context.Context, id domainrateplan.ID, start, end time.Time) (int, error) {
	filter := bson.M{"rate_plan_id": string(id)}
	if dateFilter := dateRangeFilter(start, end); dateFilter != nil {
		filter["date"] = dateFilter
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type priceDocument struct {
	ID         string  `bson:"_id"`
	RatePlanID string  `bson:"rate_plan_id"`
	Date       string  `bson:"date"`
	Amount     float64 `bson:"amount"`
	UpdatedAt  int64   `bson:"updated_at"`
}

func newPriceDocument(p domainrateplan.Price) priceDocument {
	return priceDocument{
		ID:         priceKey(p.RatePlanID, p.Date),
		RatePlanID: string(p.RatePlanID),
		Date:       calendar.FormatLocal(calendar.Normalize(p.Date)),
		Amount:     p.Amount,
		UpdatedAt:  p.UpdatedAt.UnixMilli(),
	}
}

func (d priceDocument) toAggregate() (domainrateplan.Price, error) {
	date, err := calendar.ParseLocal(d.Date)
	if err != nil {
		return domainrateplan.Price{}, err
	}
	return domainrateplan.Price{
		RatePlanID: domainrateplan.ID(d.RatePlanID),
		Date:       date,
		Amount:     d.Amount,
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}, nil
}

func priceKey(id domainrateplan.ID, date time.Time) string {
	return string(id) + ":" + calendar.FormatLocal(calendar.Normalize(date))
}
