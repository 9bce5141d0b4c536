package mongo

import (
	"context"
	"errors"
	"net/url"
	"os"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
)

func TestSearchFilterTranslation(t *testing.T) {
	q, err := domainproperties.ParseQuery(url.Values{
		"base_rate[lte]": {"150"},
		"amenities[in]":  {"wifi,Pool"},
		"status":         {"Active"},
		"location":       {"Lake (North)"},
		"sort":           {"-average_rating,name"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := searchFilter(q)
	want := bson.M{"$and": bson.A{
		bson.M{"address": bson.M{"$regex": `Lake \(North\)`, "$options": "i"}},
		bson.M{"amenities": bson.M{"$in": bson.A{"wifi", "pool"}}},
		bson.M{"base_rate.amount": bson.M{"$lte": 150.0}},
		bson.M{"status": "active"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch\n got: %#v\nwant: %#v", got, want)
	}

	sort := searchSort(q)
	wantSort := bson.D{{Key: "average_rating", Value: -1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	if !reflect.DeepEqual(sort, wantSort) {
		t.Fatalf("sort = %v, want %v", sort, wantSort)
	}

	if empty := searchFilter(domainproperties.Query{}); len(empty) != 0 {
		t.Fatalf("expected empty filter, got %v", empty)
	}
}

func TestOverlapFilterIsHalfOpen(t *testing.T) {
	dr := daterange.DateRange{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
	}
	f := overlapFilter("p-1", dr)
	if f["range.start"].(bson.M)["$lt"] != dr.End || f["range.end"].(bson.M)["$gt"] != dr.Start {
		t.Fatalf("unexpected bounds %v", f)
	}
	if f["status"].(bson.M)["$ne"] != "cancelled" {
		t.Fatalf("cancelled bookings must be excluded: %v", f)
	}
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	b := &domainbooking.Booking{
		ID: "b-1", TravelerID: "t-1", PropertyID: "p-1", HostID: "h-1",
		Range:      daterange.DateRange{Start: at, End: at.Add(96 * time.Hour)},
		Nights:     4,
		TotalPrice: money.Must(400, "USD"),
		Status:     domainbooking.StatusPending,
		CreatedAt:  at, UpdatedAt: at, Version: 3,
	}
	got := newBookingDocument(b).toAggregate()
	if !reflect.DeepEqual(got, b) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, b)
	}
}

func TestConflictOrClassifiesWriteConflicts(t *testing.T) {
	conflict := mongo.CommandError{Code: writeConflictCode, Message: "WriteConflict"}
	if err := conflictOr(conflict); fault.KindOf(err) != fault.Conflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}
	plain := errors.New("boom")
	if err := conflictOr(plain); err != plain {
		t.Fatalf("unrelated errors must pass through, got %v", err)
	}
	if conflictOr(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}

// TestRepositoriesAgainstMongo needs a replica set at MONGO_TEST_URI.
func TestRepositoriesAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri, "homestay_test_"+time.Now().Format("20060102150405"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.DB.Drop(context.Background())
		_ = client.Close(context.Background())
	})
	factory, err := NewFactory(ctx, client.DB)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	p, _ := domainproperties.NewProperty(domainproperties.CreateParams{
		ID: "p-1", HostID: "h-1", Name: "Cabin", Address: "1 Lake Rd", BaseRate: money.Must(100, "USD"),
	})
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	txCtx := unit.(*Unit).InjectContext(ctx)
	if err := unit.Properties().Save(txCtx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Commit(txCtx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	stale := *p
	stale.Version = 0
	if err := factory.PropertiesRepo.Save(ctx, &stale); !errors.Is(err, domainproperties.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}
	got, err := factory.PropertiesRepo.ByID(ctx, "p-1")
	if err != nil || got.Name != "Cabin" || got.Version != 1 {
		t.Fatalf("by id: %+v %v", got, err)
	}
}
