package support

import (
	"context"

	"homestay/internal/app/uow"
)

// Managed tracks a unit of work a handler had to open itself because none
// was bound to the context. A nil *Managed means the unit belongs to the caller.
type Managed struct {
	unit      uow.UnitOfWork
	ctx       context.Context
	committed bool
}

// BeginUnit returns the unit of work bound to ctx, or begins a new one.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, *Managed, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	return unit, execCtx, &Managed{unit: unit, ctx: execCtx}, nil
}

// BeginReadOnlyUnit is BeginUnit for query handlers.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, *Managed, error) {
	return BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
}

// Commit commits a handler-owned unit. It is a no-op for borrowed units.
func (m *Managed) Commit() error {
	if m == nil || m.committed {
		return nil
	}
	if err := m.unit.Commit(m.ctx); err != nil {
		return err
	}
	m.committed = true
	return nil
}

// Close rolls back a handler-owned unit that was not committed.
func (m *Managed) Close() {
	if m == nil || m.committed {
		return
	}
	_ = m.unit.Rollback(m.ctx)
}
