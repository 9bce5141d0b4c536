package commands

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type pingCommand struct{ Value string }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchRoutesToTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, string](func(ctx context.Context, cmd pingCommand) (string, error) {
		return "pong:" + cmd.Value, nil
	}))

	got, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Value: "a"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "pong:a" {
		t.Fatalf("unexpected result %q", got)
	}
	if !slices.Equal(bus.Keys(), []string{"test.ping"}) {
		t.Fatalf("unexpected keys %v", bus.Keys())
	}
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	if _, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
	if _, err := Dispatch[otherCommand, string](context.Background(), nil, otherCommand{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("expected ErrNilBus, got %v", err)
	}
	RegisterHandler[pingCommand, int](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) {
		return 1, nil
	}))
	if _, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, string](func(context.Context, pingCommand) (string, error) { return "", nil })
	RegisterHandler[pingCommand, string](bus, "k", h)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate key")
		}
	}()
	RegisterHandler[pingCommand, string](bus, "k", h)
}

func TestRegisterHandlerDefaultsToCommandKey(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, "", HandlerFunc[pingCommand, string](func(_ context.Context, cmd pingCommand) (string, error) {
		return cmd.Value, nil
	}))
	if !slices.Equal(bus.Keys(), []string{"test.ping"}) {
		t.Fatalf("unexpected keys %v", bus.Keys())
	}
	got, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Value: "x"})
	if err != nil || got != "x" {
		t.Fatalf("dispatch: %q %v", got, err)
	}
}

func TestDispatchNilResultYieldsZero(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, *string](bus, "", HandlerFunc[pingCommand, *string](func(context.Context, pingCommand) (*string, error) {
		return nil, nil
	}))
	got, err := Dispatch[pingCommand, *string](context.Background(), bus, pingCommand{})
	if err != nil || got != nil {
		t.Fatalf("expected nil result, got %v %v", got, err)
	}
}
