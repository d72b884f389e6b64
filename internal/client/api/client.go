// Package api is the client of the hosted workspace backend: REST record
// storage, token auth and the websocket change feed. It is a consumer of the
// backend's contract, not an implementer; everything here is request plumbing
// and error translation.
package api

import (
	"context"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
)

// Session is the authenticated user as the backend reports it. The user id
// is an opaque string used for created_by and audit attribution.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// Filter narrows a List call. The zero value lists the whole collection
// (workspace-scoped, as every call is).
type Filter struct {
	// NameFold matches the name field case-insensitively.
	NameFold string
	// ExcludeID drops one record from the result, used by duplicate checks
	// on update.
	ExcludeID string
}

// Client is the backend SDK surface the sync layer consumes.
type Client interface {
	Close() error

	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*Session, error)
	Session() *Session
	Ping(ctx context.Context) error

	Create(ctx context.Context, collection string, fields map[string]any) (*models.Record, error)
	Get(ctx context.Context, collection, id string) (*models.Record, error)
	List(ctx context.Context, collection string, f Filter) ([]*models.Record, error)
	// Update submits a conditional write: the backend applies it only if the
	// stored version still equals expectedVersion. Zero means unconditional.
	Update(ctx context.Context, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error)
	Delete(ctx context.Context, collection, id string) error

	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)

	PresignPut(ctx context.Context, filename string) (key string, url string, err error)
	PresignGet(ctx context.Context, key string) (url string, err error)

	// Subscribe opens the workspace change feed for the given collections.
	Subscribe(ctx context.Context, collections []string) (Feed, error)
}

// Feed is one open change-feed subscription. Events closes when the feed
// dies; Err then reports why.
type Feed interface {
	Events() <-chan models.Event
	Err() error
	Close() error
}
