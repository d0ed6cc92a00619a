// Package ready waits for backing services to come up at startup.
package ready

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Options tunes the exponential backoff used while probing
type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultOptions suits local docker-compose startups
func DefaultOptions() Options {
	return Options{
		InitialInterval: 2 * time.Second,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  60 * time.Second,
	}
}

// Wait calls probe until it succeeds, the context ends or the backoff budget
// runs out. It is only used before serving traffic; analysis stages never
// retry.
func Wait(ctx context.Context, name string, opts Options, logger *zap.Logger, probe func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.InitialInterval
	bo.MaxInterval = opts.MaxInterval
	bo.MaxElapsedTime = opts.MaxElapsedTime

	attempt := 0
	op := func() error {
		attempt++
		err := probe(ctx)
		if err != nil && logger != nil {
			logger.Warn("🔄 Waiting for dependency",
				zap.String("dependency", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("%s not ready after %d attempts: %w", name, attempt, err)
	}
	if logger != nil {
		logger.Info("✅ Dependency ready", zap.String("dependency", name), zap.Int("attempts", attempt))
	}
	return nil
}
