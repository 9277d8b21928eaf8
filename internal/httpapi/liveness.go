package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HealthChecker is the subset of broker.Client the liveness gate needs.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// WaitForBrokerLive blocks until the broker reports healthy, retrying up
// to 10 times, one second apart. A non-nil return means the broker never
// became reachable within that budget and startup must abort (spec §4.8,
// §6 exit code 2).
func WaitForBrokerLive(ctx context.Context, checker HealthChecker) error {
	const maxAttempts = 10

	check := func() error {
		return checker.Health(ctx)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), maxAttempts-1)
	if err := backoff.Retry(check, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("broker did not become healthy after %d attempts: %w", maxAttempts, err)
	}
	return nil
}
