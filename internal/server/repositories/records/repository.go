package records

import (
	"context"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

// Filter narrows List results. NameFold matches the name field
// case-insensitively; ExcludeID drops one record from the result, which lets
// a caller check name uniqueness while editing that same record.
type Filter struct {
	NameFold  string
	ExcludeID string
}

type Repository interface {
	Create(ctx context.Context, rec *models.Record) (*models.Record, error)
	GetByID(ctx context.Context, workspace, collection, id string) (*models.Record, error)
	List(ctx context.Context, workspace, collection string, f Filter) ([]*models.Record, error)

	// Update rewrites a record's fields. With expectedVersion > 0 the write
	// is conditional and fails with a VersionConflictError carrying the
	// record's actual version when the stored version differs.
	Update(ctx context.Context, workspace, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error)

	// Delete removes a record and returns the deleted row for auditing.
	Delete(ctx context.Context, workspace, collection, id string) (*models.Record, error)

	// CountRecipeLinks reports how many recipes reference the given
	// ingredient, used to refuse deleting ingredients still in use.
	CountRecipeLinks(ctx context.Context, workspace, ingredientID string) (int, error)
}
