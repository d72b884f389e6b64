// Package changelog is the durable offline change log: a bounded FIFO of
// mutations captured while disconnected, persisted locally and drained
// against the remote store once connectivity returns.
package changelog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/repositories/queue"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
)

const (
	// MaxEntries bounds the queue; the oldest entry is dropped silently
	// on overflow.
	MaxEntries = 100

	// MaxAttempts is how many replays an operation gets before it is
	// dropped with a warning.
	MaxAttempts = 3
)

// Applier replays one queued operation against the remote store.
type Applier func(ctx context.Context, op *models.QueuedOp) error

// Log owns the queued operations. All access goes through it; the draining
// flag keeps a second drain from interleaving with a running one.
type Log struct {
	repo     queue.Repository
	notifier ui.Notifier
	logger   logging.Logger

	draining atomic.Bool
}

func New(repo queue.Repository, notifier ui.Notifier, logger logging.Logger) *Log {
	return &Log{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("module", "changelog"),
	}
}

// Enqueue appends op to the tail, trimming the oldest entries past
// MaxEntries.
func (l *Log) Enqueue(ctx context.Context, op *models.QueuedOp) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.EnqueuedAt.IsZero() {
		op.EnqueuedAt = time.Now().UTC()
	}

	if err := l.repo.Append(ctx, op); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	n, err := l.repo.Len(ctx)
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	if n > MaxEntries {
		if err := l.repo.TrimOldest(ctx, n-MaxEntries); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		l.logger.Warn(ctx, "change log full, dropped oldest", "dropped", n-MaxEntries)
	}
	return nil
}

// Len returns the number of pending operations.
func (l *Log) Len(ctx context.Context) (int, error) {
	return l.repo.Len(ctx)
}

// ProcessQueue drains the log head-first through apply. A successful replay
// removes the operation; a failed one goes to the tail with its attempt
// counter bumped, until MaxAttempts failures drop it with a warning.
// Returns how many operations were applied and how many were dropped.
// A drain already in progress makes this call a no-op.
func (l *Log) ProcessQueue(ctx context.Context, apply Applier) (applied, dropped int, err error) {
	if !l.draining.CompareAndSwap(false, true) {
		return 0, 0, nil
	}
	defer l.draining.Store(false)

	for {
		ops, err := l.repo.List(ctx)
		if err != nil {
			return applied, dropped, fmt.Errorf("drain: %w", err)
		}
		if len(ops) == 0 {
			return applied, dropped, nil
		}

		head := ops[0]
		if aerr := apply(ctx, head); aerr != nil {
			attempts := head.Attempts + 1
			if attempts >= MaxAttempts {
				if rerr := l.repo.Remove(ctx, head.ID); rerr != nil {
					return applied, dropped, fmt.Errorf("drain: %w", rerr)
				}
				dropped++
				l.logger.Error(ctx, "queued operation dropped after repeated failures",
					"collection", head.Collection, "action", head.Action, "error", aerr.Error())
				l.notifier.Notify(ui.LevelWarning,
					fmt.Sprintf("A pending %s change could not be synced and was discarded.", head.Collection))
				continue
			}
			if merr := l.repo.MoveToTail(ctx, head.ID, attempts); merr != nil {
				return applied, dropped, fmt.Errorf("drain: %w", merr)
			}
			continue
		}

		if rerr := l.repo.Remove(ctx, head.ID); rerr != nil {
			return applied, dropped, fmt.Errorf("drain: %w", rerr)
		}
		applied++
	}
}
