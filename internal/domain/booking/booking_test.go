package booking

import (
	"errors"
	"testing"
	"time"

	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
	"homestay/internal/domain/user"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPending(t *testing.T) *Booking {
	t.Helper()
	dr, err := daterange.New(day(2024, 1, 1), day(2024, 1, 5))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	b, err := NewBooking(CreateParams{
		ID:          "b-1",
		TravelerID:  "traveler",
		PropertyID:  "p-1",
		HostID:      "host",
		Range:       dr,
		NightlyRate: money.Must(100, "USD"),
		Now:         day(2023, 12, 1),
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	return b
}

func TestNewBookingPricesNightsTimesRate(t *testing.T) {
	b := newPending(t)
	if b.Nights != 4 {
		t.Fatalf("expected 4 nights, got %d", b.Nights)
	}
	if b.TotalPrice.Amount != 400 || b.TotalPrice.Currency != "USD" {
		t.Fatalf("expected 400 USD, got %v", b.TotalPrice)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if evs := b.PendingEvents(); len(evs) != 1 || evs[0].EventName() != EventRequested {
		t.Fatalf("expected requested event, got %v", evs)
	}
}

func TestNewBookingRequiresRate(t *testing.T) {
	dr, _ := daterange.New(day(2024, 1, 1), day(2024, 1, 2))
	_, err := NewBooking(CreateParams{ID: "b", TravelerID: "t", PropertyID: "p", Range: dr})
	if !errors.Is(err, ErrRateRequired) {
		t.Fatalf("expected ErrRateRequired, got %v", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	b := newPending(t)
	if err := b.Approve("host", time.Time{}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := b.Complete("host", time.Time{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != StatusCompleted || !b.Status.Terminal() {
		t.Fatalf("expected completed, got %s", b.Status)
	}
	if err := b.Cancel("traveler", time.Time{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected terminal state to reject cancel, got %v", err)
	}
}

func TestCancelByTravelerOrHost(t *testing.T) {
	for _, actor := range []string{"traveler", "host"} {
		b := newPending(t)
		if err := b.Cancel(userID(actor), time.Time{}); err != nil {
			t.Fatalf("%s cancel: %v", actor, err)
		}
		if b.Status != StatusCancelled || b.Active() {
			t.Fatalf("expected cancelled, got %s", b.Status)
		}
	}
	b := newPending(t)
	if err := b.Cancel("stranger", time.Time{}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	if fault.KindOf(ErrNotAllowed) != fault.Forbidden {
		t.Fatalf("expected forbidden kind")
	}
}

func TestAuthorizationPrecedesStateCheck(t *testing.T) {
	b := newPending(t)
	_ = b.Cancel("host", time.Time{})
	if err := b.Approve("traveler", time.Time{}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed for non-host on cancelled booking, got %v", err)
	}
	if err := b.Approve("host", time.Time{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for host, got %v", err)
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := newPending(t)
	if err := b.Complete("host", time.Time{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if fault.KindOf(ErrInvalidTransition) != fault.Conflict {
		t.Fatalf("invalid transitions are conflicts")
	}
}

func TestCanTransitionTable(t *testing.T) {
	b := newPending(t)
	cases := []struct {
		actor string
		tr    Transition
		want  bool
	}{
		{"host", TransitionApprove, true},
		{"traveler", TransitionApprove, false},
		{"host", TransitionComplete, true},
		{"traveler", TransitionComplete, false},
		{"host", TransitionCancel, true},
		{"traveler", TransitionCancel, true},
		{"stranger", TransitionCancel, false},
		{"", TransitionCancel, false},
		{"host", Transition("refund"), false},
	}
	for _, tc := range cases {
		if got := CanTransition(userID(tc.actor), b, tc.tr); got != tc.want {
			t.Errorf("%s %s: expected %v, got %v", tc.actor, tc.tr, tc.want, got)
		}
	}
}

func TestTransitionRecordsEvent(t *testing.T) {
	b := newPending(t)
	b.ClearEvents()
	if err := b.Apply("host", TransitionApprove, day(2023, 12, 2)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	evs := b.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != EventConfirmed {
		t.Fatalf("expected confirmed event, got %v", evs)
	}
	changed, ok := evs[0].(StatusChanged)
	if !ok || changed.From != StatusPending || changed.To != StatusConfirmed {
		t.Fatalf("unexpected event payload %+v", evs[0])
	}
}

func userID(s string) user.ID { return user.ID(s) }
