// Package commands routes write intents from transports to their handlers.
package commands

import (
	"context"

	"homestay/internal/domain/shared/fault"
)

// Command is a write intent. Key names the handler and prefixes idempotency
// records, so it must be stable across releases.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets a method value serve as a Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

// Wiring mistakes surface as internal errors; callers never see the details.
var (
	ErrHandlerNotFound = fault.New(fault.Internal, "commands: no handler registered")
	ErrInvalidCommand  = fault.New(fault.Internal, "commands: handler received a foreign command")
	ErrResultType      = fault.New(fault.Internal, "commands: handler returned an unexpected result")
	ErrNilBus          = fault.New(fault.Internal, "commands: bus not configured")
)
