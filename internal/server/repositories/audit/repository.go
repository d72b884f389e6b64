package audit

import (
	"context"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

type Repository interface {
	// Append stores one audit entry. History is append-only.
	Append(ctx context.Context, entry *models.AuditEntry) error

	// List returns the newest entries for a workspace, most recent first,
	// capped at limit.
	List(ctx context.Context, workspace string, limit int) ([]*models.AuditEntry, error)
}
