package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used by tests and local runs
// without a database. It mirrors the CAS and filter semantics of the
// Postgres implementation.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.Record)}
}

func (r *InMemoryRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	rec.ID = uuid.NewString()
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.rows[rec.ID] = rec.Clone()
	return rec, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, workspace, collection, id string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rows[id]
	if !ok || rec.Workspace != workspace || rec.Collection != collection {
		return nil, common.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *InMemoryRepository) List(ctx context.Context, workspace, collection string, f Filter) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Record
	for _, rec := range r.rows {
		if rec.Workspace != workspace || rec.Collection != collection {
			continue
		}
		if f.NameFold != "" && !strings.EqualFold(rec.Name(), f.NameFold) {
			continue
		}
		if f.ExcludeID != "" && rec.ID == f.ExcludeID {
			continue
		}
		result = append(result, rec.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, workspace, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.Workspace != workspace || rec.Collection != collection {
		return nil, common.ErrNotFound
	}
	if expectedVersion > 0 && rec.Version != expectedVersion {
		return nil, &common.VersionConflictError{Expected: expectedVersion, Actual: rec.Version}
	}

	rec.Fields = fields
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return rec.Clone(), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, workspace, collection, id string) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.Workspace != workspace || rec.Collection != collection {
		return nil, common.ErrNotFound
	}
	delete(r.rows, id)
	return rec, nil
}

func (r *InMemoryRepository) CountRecipeLinks(ctx context.Context, workspace, ingredientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rec := range r.rows {
		if rec.Workspace != workspace || rec.Collection != common.CollectionRecipes {
			continue
		}
		links, _ := rec.Fields["links"].([]any)
		for _, l := range links {
			m, _ := l.(map[string]any)
			if m != nil && m["ingredient_id"] == ingredientID {
				n++
				break
			}
		}
	}
	return n, nil
}
