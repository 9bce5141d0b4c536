package reviews

import (
	"context"
	"testing"
	"time"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	unit, _ := store.Factory().Begin(ctx, uow.TxOptions{})

	p, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID: "p-1", HostID: "h-1", Name: "Loft", Address: "2 Main St", BaseRate: money.Must(80, "EUR"),
	})
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	if err := unit.Properties().Save(ctx, p); err != nil {
		t.Fatalf("save property: %v", err)
	}

	stays := []struct {
		id, traveler string
		status       domainbooking.Status
		month        time.Month
	}{
		{"b-1", "t-1", domainbooking.StatusCompleted, time.January},
		{"b-2", "t-2", domainbooking.StatusPending, time.February},
		{"b-3", "t-3", domainbooking.StatusCompleted, time.March},
	}
	for _, s := range stays {
		dr, _ := daterange.New(time.Date(2024, s.month, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, s.month, 3, 0, 0, 0, 0, time.UTC))
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID: domainbooking.ID(s.id), TravelerID: domainuser.ID(s.traveler), PropertyID: "p-1", HostID: "h-1",
			Range: dr, NightlyRate: p.BaseRate,
		})
		if err != nil {
			t.Fatalf("booking: %v", err)
		}
		b.Status = s.status
		if err := unit.Bookings().Save(ctx, b); err != nil {
			t.Fatalf("save booking: %v", err)
		}
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return store
}

func ticking() func() time.Time {
	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
}

func property(t *testing.T, store *memory.Store) *domainproperties.Property {
	t.Helper()
	unit, _ := store.Factory().Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	p, err := unit.Properties().ByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("load property: %v", err)
	}
	return p
}

func TestSubmitReviewRequiresCompletedStay(t *testing.T) {
	store := seed(t)
	h := &SubmitReviewHandler{UoWFactory: store.Factory(), Outbox: store.Outbox(), Now: ticking()}
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  SubmitReviewCommand
		kind fault.Kind
	}{
		{"pending booking only", SubmitReviewCommand{ReviewID: "r-x", PropertyID: "p-1", UserID: "t-2", Rating: 5}, fault.Forbidden},
		{"never stayed", SubmitReviewCommand{ReviewID: "r-x", PropertyID: "p-1", UserID: "t-9", Rating: 5}, fault.Forbidden},
		{"rating out of range", SubmitReviewCommand{ReviewID: "r-x", PropertyID: "p-1", UserID: "t-1", Rating: 6}, fault.InvalidInput},
		{"unknown property", SubmitReviewCommand{ReviewID: "r-x", PropertyID: "p-9", UserID: "t-1", Rating: 3}, fault.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.Handle(ctx, tc.cmd); fault.KindOf(err) != tc.kind {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
	if p := property(t, store); p.NumReviews != 0 {
		t.Fatalf("rejected reviews must not count, got %d", p.NumReviews)
	}
}

func TestSubmitReviewUpdatesAggregate(t *testing.T) {
	store := seed(t)
	h := &SubmitReviewHandler{UoWFactory: store.Factory(), Outbox: store.Outbox(), Now: ticking()}
	ctx := context.Background()

	if _, err := h.Handle(ctx, SubmitReviewCommand{ReviewID: "r-1", PropertyID: "p-1", UserID: "t-1", Rating: 4, Comment: " cosy "}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	got, err := h.Handle(ctx, SubmitReviewCommand{ReviewID: "r-2", PropertyID: "p-1", UserID: "t-3", Rating: 5})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if got.Rating != 5 || got.UserID != "t-3" {
		t.Fatalf("unexpected review %+v", got)
	}
	p := property(t, store)
	if p.AverageRating != 4.5 || p.NumReviews != 2 {
		t.Fatalf("expected 4.5 over 2 reviews, got %v over %d", p.AverageRating, p.NumReviews)
	}

	if _, err := h.Handle(ctx, SubmitReviewCommand{ReviewID: "r-3", PropertyID: "p-1", UserID: "t-1", Rating: 1}); fault.KindOf(err) != fault.Conflict {
		t.Fatalf("expected already reviewed conflict, got %v", err)
	}

	var names []string
	for _, doc := range store.Outbox().Documents() {
		names = append(names, doc.Name)
	}
	if len(names) != 4 || names[0] != "review.submitted" || names[1] != "property.rating_changed" {
		t.Fatalf("unexpected events %v", names)
	}

	list, err := (&ListPropertyReviewsHandler{UoWFactory: store.Factory()}).Handle(ctx, ListPropertyReviewsQuery{PropertyID: "p-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 2 || list.Items[0].ID != "r-2" || list.Items[1].Comment != "cosy" || list.Limit != 20 {
		t.Fatalf("unexpected listing %+v", list)
	}
	if _, err := (&ListPropertyReviewsHandler{UoWFactory: store.Factory()}).Handle(ctx, ListPropertyReviewsQuery{PropertyID: "p-9"}); fault.KindOf(err) != fault.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecomputeRatingRepairsDriftAndIsIdempotent(t *testing.T) {
	store := seed(t)
	ctx := context.Background()
	submit := &SubmitReviewHandler{UoWFactory: store.Factory(), Now: ticking()}
	_, _ = submit.Handle(ctx, SubmitReviewCommand{ReviewID: "r-1", PropertyID: "p-1", UserID: "t-1", Rating: 4})
	_, _ = submit.Handle(ctx, SubmitReviewCommand{ReviewID: "r-2", PropertyID: "p-1", UserID: "t-3", Rating: 5})

	unit, _ := store.Factory().Begin(ctx, uow.TxOptions{})
	p, _ := unit.Properties().ByID(ctx, "p-1")
	_ = p.SetRating(1, 7, time.Now())
	if err := unit.Properties().Save(ctx, p); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	_ = unit.Commit(ctx)

	h := &RecomputeRatingHandler{UoWFactory: store.Factory(), Outbox: store.Outbox()}
	for i := 0; i < 2; i++ {
		summary, err := h.Handle(ctx, RecomputeRatingCommand{PropertyID: "p-1", Role: domainuser.RoleAdmin})
		if err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
		if summary.AverageRating != 4.5 || summary.NumReviews != 2 {
			t.Fatalf("recompute %d: unexpected summary %+v", i, summary)
		}
	}
	if v := property(t, store).Version; v != 5 {
		t.Fatalf("second recompute must not write, version=%d", v)
	}
	if _, err := h.Handle(ctx, RecomputeRatingCommand{PropertyID: "p-9"}); fault.KindOf(err) != fault.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
