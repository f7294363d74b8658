package session

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// retryConfig controls navigation retries with exponential backoff and
// jitter. Navigation is the only surface operation that retries: a flaky
// page load is transient, but a failed click or fill inside the modal means
// the page state is unknown and must surface as a violation instead.
type retryConfig struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitterFraction float64
}

func defaultNavRetry() retryConfig {
	return retryConfig{
		maxAttempts:    3,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.25,
	}
}

// retryNav executes fn up to cfg.maxAttempts times. Context cancellation
// stops retries immediately and returns the last error.
func retryNav(ctx context.Context, cfg retryConfig, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if attempt >= cfg.maxAttempts-1 {
			break
		}

		zap.L().Warn("session: retrying navigation",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))

		timer := time.NewTimer(navBackoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func navBackoff(attempt int, cfg retryConfig) time.Duration {
	delay := float64(cfg.initialBackoff) * math.Pow(cfg.multiplier, float64(attempt))
	if delay > float64(cfg.maxBackoff) {
		delay = float64(cfg.maxBackoff)
	}
	if cfg.jitterFraction > 0 {
		jitterRange := delay * cfg.jitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
