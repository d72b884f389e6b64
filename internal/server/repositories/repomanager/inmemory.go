package repomanager

import (
	"context"
	"database/sql"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/audit"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/records"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/refreshtokens"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends singleton map-backed repositories. The
// DBTX argument is ignored; there is no transaction isolation. Used by
// tests.
type InMemoryRepositoryManager struct {
	users         *users.InMemoryRepository
	refreshTokens *refreshtokens.InMemoryRepository
	records       *records.InMemoryRepository
	audit         *audit.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshtokens.NewInMemoryRepository(),
		records:       records.NewInMemoryRepository(),
		audit:         audit.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return m.records
}

func (m *InMemoryRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return m.audit
}
