// Package models defines the client-side shapes of workspace data: remote
// records, typed views over their fields, realtime events and queued
// offline operations.
package models

import (
	"time"
)

// Record is a row in a named remote collection. The backend owns the
// identifier, the version counter and both timestamps; the client holds a
// transient copy. Collection-specific values live in Fields.
type Record struct {
	ID        string         `json:"id"`
	Workspace string         `json:"workspace"`
	Version   int64          `json:"version"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Fields    map[string]any `json:"fields"`
}

// systemFields are maintained by the backend and excluded from field-level
// merges.
var systemFields = map[string]struct{}{
	"id":         {},
	"workspace":  {},
	"version":    {},
	"created_by": {},
	"created_at": {},
	"updated_at": {},
}

// IsSystemField reports whether key is backend-maintained rather than
// user data.
func IsSystemField(key string) bool {
	_, ok := systemFields[key]
	return ok
}

// Name returns the record's name field, or "" for nameless collections.
func (r *Record) Name() string {
	if r == nil || r.Fields == nil {
		return ""
	}
	name, _ := r.Fields["name"].(string)
	return name
}

// Clone returns a deep-enough copy: the Fields map is copied, values are
// shared. Callers mutate top-level fields only.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return &c
}

// EventType labels a realtime change notification.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is a push notification from the workspace change feed.
type Event struct {
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	New        *Record   `json:"new,omitempty"`
	Old        *Record   `json:"old,omitempty"`
}
