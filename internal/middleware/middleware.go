package middleware

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/pavelc4/lukey-bot/pkg/logger"
)

type Handler func(ctx context.Context)

type Middleware func(Handler) Handler

// PanicFunc receives a recovered panic value and its stack.
type PanicFunc func(ctx context.Context, recovered any, stack []byte)

// Recover stops a panic from killing the process. onPanic may be nil.
func Recover(onPanic PanicFunc) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					if onPanic != nil {
						onPanic(ctx, r, stack)
						return
					}
					logger.FromContext(ctx).Error("Panic recovered", "error", r, "stack", string(stack))
				}
			}()
			next(ctx)
		}
	}
}

// Logger reports slow handlers at info and the rest at debug.
func Logger(name string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context) {
			start := time.Now()

			defer func() {
				duration := time.Since(start)
				if duration > 5*time.Second {
					logger.FromContext(ctx).Info("Handler completed (slow)", "name", name, "duration", duration)
				} else {
					logger.FromContext(ctx).Debug("Handler completed", "name", name, "duration", duration)
				}
			}()

			next(ctx)
		}
	}
}

// Timeout bounds the context passed to the handler.
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			next(ctx)
		}
	}
}

// Chain applies middlewares so the first one is outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
