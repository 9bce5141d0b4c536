package uow

import (
	"context"

	"homestay/internal/domain/shared/fault"
)

var ErrUnitOfWorkMissing = fault.New(fault.Internal, "uow: no unit of work bound and no factory configured")

type boundUnit struct{}

// Bind returns ctx prepared for repository calls made through unit. Units
// holding a driver session get it injected first so repositories reached
// through the same context join the transaction.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return context.WithValue(ctx, boundUnit{}, unit)
}

// FromContext reports the unit bound by Bind, if any. Handlers use it to
// join the transaction opened by the middleware instead of starting their own.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(boundUnit{}).(UnitOfWork)
	return unit, ok && unit != nil
}
