package models

import "time"

// AuditEntry records one mutation for the workspace history view.
type AuditEntry struct {
	ID         string         `json:"id"`
	Workspace  string         `json:"workspace"`
	UserID     string         `json:"user_id"`
	UserEmail  string         `json:"user_email"`
	Collection string         `json:"collection"`
	RecordID   string         `json:"record_id"`
	Action     string         `json:"action"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	At         time.Time      `json:"at"`
}
