// Package retry wraps fallible operations in a bounded exponential backoff
// policy that retries transient failures only.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vandyand/agentic-workflow-engine/pkg/models"
	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 200 * time.Millisecond
	DefaultJitter         = 0.5
	DefaultAttemptTimeout = 30 * time.Second
)

// Policy controls how an operation is retried.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Jitter         float64
	AttemptTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		Jitter:         DefaultJitter,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// FromModel merges per-step overrides onto the default policy.
func FromModel(override *models.RetryPolicy) Policy {
	policy := DefaultPolicy()
	if override == nil {
		return policy
	}

	if override.MaxAttempts > 0 {
		policy.MaxAttempts = override.MaxAttempts
	}

	if override.BaseDelayMs > 0 {
		policy.BaseDelay = time.Duration(override.BaseDelayMs) * time.Millisecond
	}

	if override.Jitter > 0 {
		policy.Jitter = override.Jitter
	}

	if override.AttemptTimeoutMs > 0 {
		policy.AttemptTimeout = time.Duration(override.AttemptTimeoutMs) * time.Millisecond
	}

	return policy
}

// Operation is any fallible unit of work producing an output object.
type Operation func(ctx context.Context) (map[string]any, error)

// Do runs op under the policy: up to MaxAttempts attempts with exponential
// backoff and jitter between them and a timeout per attempt. Permanent
// errors stop immediately; context cancellation stops between attempts,
// never mid-attempt. The output, the number of attempts made, and the last
// error are returned.
func Do(ctx context.Context, policy Policy, op Operation) (map[string]any, int, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = policy.BaseDelay
	expo.RandomizationFactor = policy.Jitter
	expo.MaxElapsedTime = 0

	var (
		output   map[string]any
		attempts int
	)

	attempt := func() error {
		attempts++

		// An in-flight attempt runs to completion even if the parent
		// context is cancelled; only the per-attempt timeout can cut
		// it short.
		attemptCtx := context.WithoutCancel(ctx)
		if policy.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(attemptCtx, policy.AttemptTimeout)
			defer cancel()
		}

		out, err := op(attemptCtx)
		if err != nil {
			if protocol.IsTransient(err) {
				return err
			}

			return backoff.Permanent(err)
		}

		output = out

		return nil
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(policy.MaxAttempts-1)), ctx)
	if err := backoff.Retry(attempt, wrapped); err != nil {
		return nil, attempts, err
	}

	return output, attempts, nil
}
