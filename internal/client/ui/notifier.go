// Package ui defines the surface the sync layer presents to whatever front
// end hosts it: toast notifications, save statuses and interactive conflict
// prompts. The CLI implements these against the terminal; tests use
// recorders.
package ui

import "github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"

// Level classifies a toast notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows transient, non-blocking messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// SaveStatus is the lifecycle state of a save surfaced next to the form.
type SaveStatus string

const (
	StatusSaving  SaveStatus = "saving"
	StatusSuccess SaveStatus = "success"
	StatusError   SaveStatus = "error"
	StatusOffline SaveStatus = "offline"
)

// StatusReporter receives save-status transitions and the current count of
// operations waiting in the offline queue.
type StatusReporter interface {
	SaveStatus(status SaveStatus)
	QueueLength(n int)
}

// ConflictPrompt asks the user to pick a resolution for two competing
// snapshots of one record. Implementations that cannot interact return
// ok=false, which makes the caller fall back to auto-resolution.
type ConflictPrompt interface {
	Choose(collection string, local, remote *models.Record) (strategy string, ok bool)
}
