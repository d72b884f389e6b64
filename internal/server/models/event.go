package models

// EventType labels a change-feed event.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one change-feed message pushed to websocket subscribers.
type Event struct {
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	New        *Record   `json:"new,omitempty"`
	Old        *Record   `json:"old,omitempty"`
}
