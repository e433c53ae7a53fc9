package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
	domainproperty "stayflow/internal/domain/property"
)

// AvailabilityRepository persists slots, one document per (property, date).
// Dates with no document are available by definition.
type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("availability_slots")}
}

func (r *AvailabilityRepository) Range(ctx context.Context, id domainproperty.ID, start, end time.Time) ([]domainavailability.Slot, error) {
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

	slots := make([]domainavailability.Slot, 0)
	for cursor.Next(ctx) {
		var doc slotDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		slot, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, cursor.Err()
}

func (r *AvailabilityRepository) Upsert(ctx context.Context, slot domainavailability.Slot) error {
	doc := newSlotDocument(slot)
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, opts)
	return err
}

type slotDocument struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property_id"`
	Date       string `bson:"date"`
	Status     string `bson:"status"`
	Reason     string `bson:"reason,omitempty"`
	UpdatedAt  int64  `bson:"updated_at"`
}

func newSlotDocument(s domainavailability.Slot) slotDocument {
	return slotDocument{
		ID:         slotKey(s.PropertyID, s.Date),
		PropertyID: string(s.PropertyID),
		Date:       calendar.FormatLocal(calendar.Normalize(s.Date)),
		Status:     string(s.Status),
		Reason:     s.Reason,
		UpdatedAt:  s.UpdatedAt.UnixMilli(),
	}
}

func (d slotDocument) toAggregate() (domainavailability.Slot, error) {
	date, err := calendar.ParseLocal(d.Date)
	if err != nil {
		return domainavailability.Slot{}, err
	}
	return domainavailability.Slot{
		PropertyID: domainproperty.ID(d.PropertyID),
		Date:       date,
		Status:     domainavailability.Status(d.Status),
		Reason:     d.Reason,
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}, nil
}

func slotKey(id domainproperty.ID, date time.Time) string {
	return string(id) + ":" + calendar.FormatLocal(calendar.Normalize(date))
}
