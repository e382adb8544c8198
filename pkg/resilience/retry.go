package resilience

import (
	"context"
	"time"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"github.com/sethvargo/go-retry"
)

// Retry runs fn up to maxRetries+1 times with exponential backoff
// starting at baseDelay, stopping as soon as fn succeeds or ctx is
// done. fn signals a retryable failure by returning a
// retry.RetryableError-wrapped error; any other error aborts immediately.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	backoff := retry.NewExponential(baseDelay)
	backoff = retry.WithMaxRetries(uint64(maxRetries), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return fn(ctx)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTimeout, "retries exhausted")
	}
	return nil
}

// Retryable marks err as eligible for another attempt; a non-wrapped
// error aborts the retry loop immediately (e.g. a validation error that
// will never succeed on a second try).
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retry.RetryableError(err)
}
