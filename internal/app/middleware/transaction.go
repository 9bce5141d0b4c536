package middleware

import (
	"context"

	"homestay/internal/app/commands"
	"homestay/internal/app/uow"
)

// TxOptionsProvider picks transaction options per command. Nil means defaults.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction gives every command its own unit of work: commit when the rest
// of the chain succeeds, roll back otherwise. A command dispatched while a
// unit is already bound joins that unit and leaves commit to the outer one.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			if _, joined := uow.FromContext(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			var opts uow.TxOptions
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			txCtx := uow.Bind(ctx, unit)
			defer func() {
				if err != nil {
					_ = unit.Rollback(txCtx)
				}
			}()

			if res, err = next.Dispatch(txCtx, cmd); err != nil {
				return nil, err
			}
			if err = unit.Commit(txCtx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
