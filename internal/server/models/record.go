package models

import "time"

// Record is one row of workspace data. Fields holds the collection-specific
// payload as JSON; the surrounding columns are system-managed. JSON tags
// match what the client expects on the wire.
type Record struct {
	ID         string         `json:"id"`
	Workspace  string         `json:"workspace"`
	Collection string         `json:"-"`
	Version    int64          `json:"version"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Fields     map[string]any `json:"fields"`
}

// Name returns the record's name field, or "" when the collection has none.
func (r *Record) Name() string {
	if r.Fields == nil {
		return ""
	}
	name, _ := r.Fields["name"].(string)
	return name
}

// Clone returns a deep-enough copy for audit snapshots. Field values are
// shared; only the top-level map is copied.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Fields != nil {
		out.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}
