package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that converts executor panics into errors.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, c Call, next Handler) (ok bool, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "processor panicked",
					slog.String("processor_id", c.ProcessorID),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				ok = false
				retErr = fmt.Errorf("panic in processor %s: %v", c.ProcessorID, r)
			}
		}()
		return next(ctx)
	}
}
