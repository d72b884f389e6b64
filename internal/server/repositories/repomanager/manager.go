// Package repomanager vends repositories bound to a database handle, so
// services can compose repository calls inside one transaction.
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

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Records(db dbx.DBTX) records.Repository
	Audit(db dbx.DBTX) audit.Repository
}
