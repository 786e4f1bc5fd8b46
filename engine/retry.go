/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	dserrors "github.com/suparena/dynascript/errors"
)

// maxTimeoutRetries is how many times an attempt that hit its deadline is
// repeated before the timeout is surfaced.
const maxTimeoutRetries = 1

// withRetry runs fn with a per-attempt deadline. Network errors are retried
// up to MaxRetries times with linear backoff, a timed out attempt is retried
// once, and an authentication failure marks the engine as unusable.
func (e *Engine) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	networkRetries := 0
	timeouts := 0

	for {
		// Check context before each attempt
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		err := fn(attemptCtx)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch {
		case timedOut || errors.Is(err, context.DeadlineExceeded) || dserrors.IsTimeout(err):
			timeouts++
			if timeouts > maxTimeoutRetries {
				return dserrors.NewTimeoutError(operation, e.opts.Timeout, timeouts)
			}
			e.logger.Warn("attempt timed out, retrying", "operation", operation, "timeout", e.opts.Timeout)

		case dserrors.IsAuth(err):
			e.markAuthFailed(err)
			return err

		case errors.Is(err, dserrors.ErrNetwork):
			if networkRetries >= e.opts.MaxRetries {
				return fmt.Errorf("%s failed after %d retries: %w", operation, networkRetries, err)
			}
			networkRetries++

			backoff := time.Duration(networkRetries) * e.opts.RetryBackoff
			e.logger.Warn("network error, retrying", "operation", operation, "attempt", networkRetries, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

		default:
			return err
		}
	}
}
