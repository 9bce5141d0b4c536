package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	domainuser "homestay/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(ctx context.Context, db *mongo.Database) (*BookingRepository, error) {
	col := db.Collection("agg_booking")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}, {Key: "range.start", Value: 1}}},
		{Keys: bson.D{{Key: "traveler_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &BookingRepository{col: col}, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return conflictOr(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Overlapping(ctx context.Context, propertyID domainproperties.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	return r.find(ctx, overlapFilter(propertyID, dr))
}

func (r *BookingRepository) ListByTraveler(ctx context.Context, travelerID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"traveler_id": string(travelerID)})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainuser.ID, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	filter := bson.M{"host_id": string(hostID)}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) HasCompletedStay(ctx context.Context, travelerID domainuser.ID, propertyID domainproperties.ID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{
		"traveler_id": string(travelerID),
		"property_id": string(propertyID),
		"status":      string(domainbooking.StatusCompleted),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// overlapFilter matches non-cancelled bookings whose half-open range
// intersects dr.
func overlapFilter(propertyID domainproperties.ID, dr daterange.DateRange) bson.M {
	return bson.M{
		"property_id": string(propertyID),
		"status":      bson.M{"$ne": string(domainbooking.StatusCancelled)},
		"range.start": bson.M{"$lt": dr.End},
		"range.end":   bson.M{"$gt": dr.Start},
	}
}

type rangeDocument struct {
	Start time.Time `bson:"start"`
	End   time.Time `bson:"end"`
}

type bookingDocument struct {
	ID         string        `bson:"_id"`
	TravelerID string        `bson:"traveler_id"`
	PropertyID string        `bson:"property_id"`
	HostID     string        `bson:"host_id"`
	Range      rangeDocument `bson:"range"`
	Nights     int           `bson:"nights"`
	TotalPrice moneyDocument `bson:"total_price"`
	Status     string        `bson:"status"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		TravelerID: string(b.TravelerID),
		PropertyID: string(b.PropertyID),
		HostID:     string(b.HostID),
		Range:      rangeDocument{Start: b.Range.Start, End: b.Range.End},
		Nights:     b.Nights,
		TotalPrice: toMoneyDocument(b.TotalPrice),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.ID(d.ID),
		TravelerID: domainuser.ID(d.TravelerID),
		PropertyID: domainproperties.ID(d.PropertyID),
		HostID:     domainuser.ID(d.HostID),
		Range:      daterange.DateRange{Start: d.Range.Start.UTC(), End: d.Range.End.UTC()},
		Nights:     d.Nights,
		TotalPrice: d.TotalPrice.toMoney(),
		Status:     domainbooking.Status(d.Status),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
		Version:    d.Version,
	}
}
