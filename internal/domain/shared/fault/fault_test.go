package fault

import (
	"errors"
	"fmt"
	"testing"
)

var errSample = New(Conflict, "sample: dates unavailable")

func TestKindOfWalksWrapChain(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", errSample)
	if got := KindOf(wrapped); got != Conflict {
		t.Fatalf("expected conflict, got %s", got)
	}
	if !errors.Is(wrapped, errSample) {
		t.Fatalf("expected identity match through wrap")
	}
	if !errors.Is(wrapped, ErrConflict) {
		t.Fatalf("expected kind sentinel match")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("unexpected match against other kind")
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Fatalf("expected internal, got %s", got)
	}
	if got := MessageOf(errors.New("db password leaked")); got != "internal error" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("write conflict")
	err := Wrap(Conflict, "booking: concurrent booking", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable")
	}
	if MessageOf(err) != "booking: concurrent booking" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
	if KindOf(err) != Conflict {
		t.Fatalf("unexpected kind %s", KindOf(err))
	}
}

func TestDistinctSentinelsDoNotMatch(t *testing.T) {
	other := New(Conflict, "sample: already reviewed")
	if errors.Is(errSample, other) {
		t.Fatalf("distinct sentinels of the same kind must not match each other")
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		NotFound:     "not_found",
		Forbidden:    "forbidden",
		Conflict:     "conflict",
		InvalidInput: "invalid_input",
		Unauthorized: "unauthorized",
		Internal:     "internal",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: got %q want %q", kind, got, want)
		}
	}
	if !errors.Is(New(Unauthorized, "auth: token expired"), ErrUnauthorized) {
		t.Fatalf("expected unauthorized kind match")
	}
}
