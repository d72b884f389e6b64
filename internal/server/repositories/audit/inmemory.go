package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

// InMemoryRepository is a slice-backed Repository for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*models.AuditEntry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.At = time.Now().UTC()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, workspace string, limit int) ([]*models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.AuditEntry
	for i := len(r.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if r.entries[i].Workspace != workspace {
			continue
		}
		out := *r.entries[i]
		result = append(result, &out)
	}
	return result, nil
}
