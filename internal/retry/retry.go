// Package retry holds the single retry policy shared by the record store
// adapter and the change-log drain loop: bounded attempts, exponential
// backoff, and an error classifier deciding what is worth retrying.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Policy describes how failed remote calls are retried. The zero value is
// not usable; construct with NewPolicy.
type Policy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration

	// Retryable reports whether an error is transient. Non-retryable errors
	// fail the operation immediately.
	Retryable func(error) bool

	// Timer overrides backoff timing, used by tests. Nil means real timers.
	Timer backoff.Timer
}

// NewPolicy returns the standard policy: 3 attempts, delays doubling from
// 1s (1s, 2s), transient-only retries.
func NewPolicy() *Policy {
	return &Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Retryable:   Transient,
	}
}

// Transient is the default classifier. Constraint violations, version
// conflicts, auth failures and not-found are permanent; everything else
// (network errors, server hiccups) is assumed transient.
func Transient(err error) bool {
	switch {
	case common.IsConstraint(err):
		return false
	case errors.Is(err, common.ErrVersionConflict):
		return false
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return false
	case errors.Is(err, common.ErrNotFound):
		return false
	}
	return true
}

// Do runs op, retrying transient failures up to MaxAttempts total with
// exponential backoff. The last error is returned after attempts are
// exhausted; a non-retryable error is returned after a single attempt.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = p.BaseDelay << (p.MaxAttempts - 1)
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxAttempts-1), ctx)

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotifyWithTimer(wrapped, b, nil, p.Timer)
}
