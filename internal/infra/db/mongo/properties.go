package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
)

type PropertyRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewPropertyRepository(ctx context.Context, db *mongo.Database) (*PropertyRepository, error) {
	col := db.Collection("agg_property")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "amenities", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &PropertyRepository{col: col, locks: db.Collection("property_locks")}, nil
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Lock bumps a per property counter inside the transaction. A concurrent
// transaction touching the same counter aborts with a write conflict.
func (r *PropertyRepository) Lock(ctx context.Context, id domainproperties.ID) error {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": string(id)},
		bson.M{"$inc": bson.M{"n": 1}, "$currentDate": bson.M{"locked_at": true}},
		options.Update().SetUpsert(true),
	)
	return conflictOr(err)
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainproperties.ErrConcurrentUpdate
		}
		return conflictOr(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainproperties.ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id domainproperties.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return conflictOr(err)
	}
	if res.DeletedCount == 0 {
		return domainproperties.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, q domainproperties.Query) (domainproperties.SearchResult, error) {
	filter := searchFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainproperties.SearchResult{}, err
	}
	opts := options.Find().
		SetSort(searchSort(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainproperties.SearchResult{}, err
	}
	items, err := decodeProperties(ctx, cur)
	if err != nil {
		return domainproperties.SearchResult{}, err
	}
	return domainproperties.SearchResult{Items: items, Total: int(total)}, nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, host domainuser.ID) ([]*domainproperties.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeProperties(ctx, cur)
}

func decodeProperties(ctx context.Context, cur *mongo.Cursor) ([]*domainproperties.Property, error) {
	defer cur.Close(ctx)
	var out []*domainproperties.Property
	for cur.Next(ctx) {
		var doc propertyDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Document paths of the filterable fields.
var propertyPaths = map[string]string{
	"name":           "name",
	"status":         "status",
	"host_id":        "host_id",
	"base_rate":      "base_rate.amount",
	"average_rating": "average_rating",
	"num_reviews":    "num_reviews",
	"amenities":      "amenities",
	"created_at":     "created_at",
}

var comparison = map[domainproperties.Operator]string{
	domainproperties.OpGt:  "$gt",
	domainproperties.OpGte: "$gte",
	domainproperties.OpLt:  "$lt",
	domainproperties.OpLte: "$lte",
}

func searchFilter(q domainproperties.Query) bson.M {
	var clauses bson.A
	if q.Location != "" {
		clauses = append(clauses, bson.M{"address": bson.M{"$regex": regexp.QuoteMeta(q.Location), "$options": "i"}})
	}
	for _, f := range q.Filters {
		path, ok := propertyPaths[f.Field]
		if !ok {
			continue
		}
		values := bson.A(f.Values)
		switch {
		case f.Field == "amenities" || f.Op == domainproperties.OpIn:
			clauses = append(clauses, bson.M{path: bson.M{"$in": values}})
		case f.Op == domainproperties.OpEq:
			clauses = append(clauses, bson.M{path: values[0]})
		default:
			clauses = append(clauses, bson.M{path: bson.M{comparison[f.Op]: values[0]}})
		}
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func searchSort(q domainproperties.Query) bson.D {
	sort := bson.D{}
	for _, s := range q.Sort {
		path, ok := propertyPaths[s.Field]
		if !ok {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: path, Value: dir})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func toMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type geoDocument struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type roomTypeDocument struct {
	Name         string `bson:"name"`
	Beds         int    `bson:"beds"`
	MaxOccupancy int    `bson:"max_occupancy"`
}

type seasonalRateDocument struct {
	Name string        `bson:"name"`
	From time.Time     `bson:"from"`
	To   time.Time     `bson:"to"`
	Rate moneyDocument `bson:"rate"`
}

type propertyDocument struct {
	ID            string                 `bson:"_id"`
	HostID        string                 `bson:"host_id"`
	Name          string                 `bson:"name"`
	Description   string                 `bson:"description"`
	Address       string                 `bson:"address"`
	Location      geoDocument            `bson:"location"`
	Amenities     []string               `bson:"amenities"`
	RoomTypes     []roomTypeDocument     `bson:"room_types"`
	BaseRate      moneyDocument          `bson:"base_rate"`
	SeasonalRates []seasonalRateDocument `bson:"seasonal_rates"`
	Images        []string               `bson:"images"`
	Status        string                 `bson:"status"`
	AverageRating float64                `bson:"average_rating"`
	NumReviews    int                    `bson:"num_reviews"`
	CreatedAt     time.Time              `bson:"created_at"`
	UpdatedAt     time.Time              `bson:"updated_at"`
	Version       int64                  `bson:"version"`
}

func newPropertyDocument(p *domainproperties.Property) propertyDocument {
	doc := propertyDocument{
		ID:            string(p.ID),
		HostID:        string(p.HostID),
		Name:          p.Name,
		Description:   p.Description,
		Address:       p.Address,
		Location:      geoDocument{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Amenities:     append([]string{}, p.Amenities...),
		BaseRate:      toMoneyDocument(p.BaseRate),
		Images:        append([]string{}, p.Images...),
		Status:        string(p.Status),
		AverageRating: p.AverageRating,
		NumReviews:    p.NumReviews,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
	for _, rt := range p.RoomTypes {
		doc.RoomTypes = append(doc.RoomTypes, roomTypeDocument(rt))
	}
	for _, sr := range p.SeasonalRates {
		doc.SeasonalRates = append(doc.SeasonalRates, seasonalRateDocument{Name: sr.Name, From: sr.From, To: sr.To, Rate: toMoneyDocument(sr.Rate)})
	}
	return doc
}

func (d propertyDocument) toAggregate() *domainproperties.Property {
	p := &domainproperties.Property{
		ID:            domainproperties.ID(d.ID),
		HostID:        domainuser.ID(d.HostID),
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		Location:      domainproperties.GeoPoint{Lat: d.Location.Lat, Lng: d.Location.Lng},
		Amenities:     d.Amenities,
		BaseRate:      d.BaseRate.toMoney(),
		Images:        d.Images,
		Status:        domainproperties.Status(d.Status),
		AverageRating: d.AverageRating,
		NumReviews:    d.NumReviews,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Version:       d.Version,
	}
	for _, rt := range d.RoomTypes {
		p.RoomTypes = append(p.RoomTypes, domainproperties.RoomType(rt))
	}
	for _, sr := range d.SeasonalRates {
		p.SeasonalRates = append(p.SeasonalRates, domainproperties.SeasonalRate{Name: sr.Name, From: sr.From.UTC(), To: sr.To.UTC(), Rate: sr.Rate.toMoney()})
	}
	return p
}
