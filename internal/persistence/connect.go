package persistence

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	retryBase = 250 * time.Millisecond
	retryCap  = 5 * time.Second
)

// pingWithRetry calls ping until it succeeds, retries are exhausted or ctx
// ends. The delay doubles from retryBase up to retryCap.
func pingWithRetry(ctx context.Context, name string, retries int, logger *zap.Logger, ping func(context.Context) error) error {
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithCappedDuration(retryCap, retry.NewExponential(retryBase))
	backoff = retry.WithMaxRetries(uint64(retries), backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			logger.Warn("dependency not reachable",
				zap.String("dependency", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}
