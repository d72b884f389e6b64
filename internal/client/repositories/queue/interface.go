package queue

import (
	"context"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
)

// Repository persists the offline change log in arrival order. The change
// log survives restarts; ordering is FIFO by insertion, with MoveToTail
// re-inserting a failed operation at the end.
type Repository interface {
	// Append adds an operation at the tail.
	Append(ctx context.Context, op *models.QueuedOp) error

	// List returns all queued operations, oldest first.
	List(ctx context.Context) ([]*models.QueuedOp, error)

	// Len returns the number of queued operations.
	Len(ctx context.Context) (int, error)

	// Remove deletes one operation by id.
	Remove(ctx context.Context, id string) error

	// MoveToTail re-queues an operation at the end with the given attempt
	// count.
	MoveToTail(ctx context.Context, id string, attempts int) error

	// TrimOldest deletes the n oldest operations.
	TrimOldest(ctx context.Context, n int) error
}
