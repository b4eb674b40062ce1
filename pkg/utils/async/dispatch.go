package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler on its own goroutine
//
// Parameters:
//   - ctx: Parent context. Its logger is carried over, its cancellation is not.
//   - handler: Work to run, typically one network round trip
//
// Returns:
//   - cancel: Cancels the context handed to handler
//   - done: Closed after handler has returned or panicked
//
// Panics are recovered and errors returned by handler are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) (context.CancelFunc, <-chan struct{}) {
	newCtx, cancel := context.WithCancel(newBackgroundContext(ctx))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger := ctxlog.From(newCtx)
			logger.Error("error in async handler", "error", err)
		}
	}()

	return cancel, done
}

// newBackgroundContext detaches ctx from its parent, keeping the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
