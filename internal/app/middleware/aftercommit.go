package middleware

import (
	"context"
	"log/slog"
	"sync"

	"homestay/internal/app/commands"
)

type afterCommitKey struct{}

type afterCommitQueue struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// AfterCommit must sit outside Transaction. Work queued with RunAfterCommit
// during a command runs on its own goroutine once the command succeeded and
// is dropped when it failed. Panics and errors inside queued work never reach
// the caller.
func AfterCommit(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			queue := &afterCommitQueue{}
			res, err := nextFn(context.WithValue(ctx, afterCommitKey{}, queue), cmd)
			if err != nil {
				return nil, err
			}
			queue.mu.Lock()
			fns := queue.fns
			queue.fns = nil
			queue.mu.Unlock()
			if len(fns) > 0 {
				detached := context.WithoutCancel(ctx)
				go runDetached(detached, logger, cmd.Key(), fns)
			}
			return res, nil
		})
	}
}

// RunAfterCommit queues fn behind the current command. Without an
// AfterCommit middleware in the chain fn starts immediately in the background.
func RunAfterCommit(ctx context.Context, fn func(context.Context)) {
	if fn == nil {
		return
	}
	if queue, ok := ctx.Value(afterCommitKey{}).(*afterCommitQueue); ok {
		queue.mu.Lock()
		queue.fns = append(queue.fns, fn)
		queue.mu.Unlock()
		return
	}
	go runDetached(context.WithoutCancel(ctx), nil, "", []func(context.Context){fn})
}

func runDetached(ctx context.Context, logger *slog.Logger, command string, fns []func(context.Context)) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil && logger != nil {
					logger.Error("after-commit task panicked", "command", command, "panic", r)
				}
			}()
			fn(ctx)
		}()
	}
}
