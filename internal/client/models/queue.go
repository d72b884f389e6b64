package models

import "time"

// Action is the mutation kind carried by a queued operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// QueuedOp is a pending local mutation captured while offline or after a
// retryable network failure. Owned exclusively by the change log: created on
// enqueue, destroyed on successful replay or after MaxAttempts failures.
type QueuedOp struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Action     Action         `json:"action"`
	Payload    map[string]any `json:"payload,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
	Attempts   int            `json:"attempts"`
}
