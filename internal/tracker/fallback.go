package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/healthlog/internal/domain"
	"github.com/vbonduro/healthlog/internal/metrics"
)

// fallbackPolicy runs a durable write against the structured store and, if
// that is unavailable or fails, against the flat store. A nil structured
// store means the session is in flat mode.
type fallbackPolicy struct {
	structured Structured
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func (t *Tracker) policy() fallbackPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fallbackPolicy{structured: t.structured, logger: t.logger, metrics: t.metrics}
}

// run returns the backend the write landed on. When both fail the error
// wraps domain.ErrWriteFailed and both causes.
func (p fallbackPolicy) run(
	ctx context.Context,
	op string,
	primary func(ctx context.Context, s Structured) error,
	secondary func(ctx context.Context) error,
) (Backend, error) {
	var primaryErr error
	if p.structured != nil {
		primaryErr = primary(ctx, p.structured)
		p.metrics.Write(op, BackendStructured.String(), primaryErr)
		if primaryErr == nil {
			return BackendStructured, nil
		}
		p.logger.WarnContext(ctx, "structured write failed, falling back to flat store", "op", op, "error", primaryErr)
		p.metrics.Fallback(op)
	}

	err := secondary(ctx)
	p.metrics.Write(op, BackendFlat.String(), err)
	if err == nil {
		return BackendFlat, nil
	}
	return BackendFlat, fmt.Errorf("%w: %s: %w", domain.ErrWriteFailed, op, errors.Join(primaryErr, err))
}
