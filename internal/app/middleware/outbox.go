package middleware

import (
	"context"
	"fmt"

	"homestay/internal/app/commands"
	"homestay/internal/app/outbox"
)

// OutboxFlush runs inside Transaction. Records staged by the handler are
// flushed before the unit commits, so a flush failure rolls the command back.
// A nil outbox makes the middleware a pass-through.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		if box == nil {
			return next
		}
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("outbox flush after %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
