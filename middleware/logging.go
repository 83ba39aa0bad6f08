package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs executor start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, c Call, next Handler) (bool, error) {
		logger.DebugContext(ctx, "processor started",
			slog.String("processor_id", c.ProcessorID),
			slog.String("run_id", c.RunID.String()),
		)

		start := time.Now()
		ok, err := next(ctx)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			logger.ErrorContext(ctx, "processor failed",
				slog.String("processor_id", c.ProcessorID),
				slog.String("run_id", c.RunID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		case !ok:
			logger.WarnContext(ctx, "processor reported failure",
				slog.String("processor_id", c.ProcessorID),
				slog.String("run_id", c.RunID.String()),
				slog.Duration("elapsed", elapsed),
			)
		default:
			logger.InfoContext(ctx, "processor completed",
				slog.String("processor_id", c.ProcessorID),
				slog.String("run_id", c.RunID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return ok, err
	}
}
