// Package queries routes read requests to their handlers. Query handlers
// never write; they open read-only units of work.
package queries

import (
	"context"

	"homestay/internal/domain/shared/fault"
)

type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = fault.New(fault.Internal, "queries: no handler registered")
	ErrInvalidQuery    = fault.New(fault.Internal, "queries: handler received a foreign query")
	ErrResultType      = fault.New(fault.Internal, "queries: handler returned an unexpected result")
	ErrNilBus          = fault.New(fault.Internal, "queries: bus not configured")
)
