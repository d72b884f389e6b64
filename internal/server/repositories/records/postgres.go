// Package records stores workspace rows as JSONB documents keyed by
// collection, with server-assigned versions for optimistic locking.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/pgerr"
)

// PostgresRepository implements record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	query := `
		INSERT INTO records (workspace, collection, created_by, fields)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		rec.Workspace, rec.Collection, rec.CreatedBy, payload).Scan(
		&rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if mapped := pgerr.Map(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, workspace, collection, id string) (*models.Record, error) {
	query := `
		SELECT id, workspace, collection, version, created_by, created_at, updated_at, fields
		FROM records
		WHERE workspace = $1 AND collection = $2 AND id = $3
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, workspace, collection, id))
}

func (r *PostgresRepository) List(ctx context.Context, workspace, collection string, f Filter) ([]*models.Record, error) {
	query := `
		SELECT id, workspace, collection, version, created_by, created_at, updated_at, fields
		FROM records
		WHERE workspace = $1 AND collection = $2
	`
	args := []any{workspace, collection}
	if f.NameFold != "" {
		args = append(args, f.NameFold)
		query += fmt.Sprintf(" AND lower(fields->>'name') = lower($%d)", len(args))
	}
	if f.ExcludeID != "" {
		args = append(args, f.ExcludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if mapped := pgerr.Map(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, workspace, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	query := `
		UPDATE records
		SET fields = $1, version = version + 1, updated_at = now()
		WHERE workspace = $2 AND collection = $3 AND id = $4
		  AND ($5 = 0 OR version = $5)
		RETURNING id, workspace, collection, version, created_by, created_at, updated_at, fields
	`
	rec, err := r.scanOne(r.db.QueryRowContext(ctx, query,
		payload, workspace, collection, id, expectedVersion))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	// No row matched: either the record is gone or the version guard failed.
	current, gerr := r.GetByID(ctx, workspace, collection, id)
	if gerr != nil {
		return nil, gerr
	}
	return nil, &common.VersionConflictError{Expected: expectedVersion, Actual: current.Version}
}

func (r *PostgresRepository) Delete(ctx context.Context, workspace, collection, id string) (*models.Record, error) {
	query := `
		DELETE FROM records
		WHERE workspace = $1 AND collection = $2 AND id = $3
		RETURNING id, workspace, collection, version, created_by, created_at, updated_at, fields
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, workspace, collection, id))
}

func (r *PostgresRepository) CountRecipeLinks(ctx context.Context, workspace, ingredientID string) (int, error) {
	query := `
		SELECT count(*) FROM records
		WHERE workspace = $1 AND collection = 'recipes'
		  AND fields->'links' @> jsonb_build_array(jsonb_build_object('ingredient_id', $2::text))
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, workspace, ingredientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanRecord(row rowScanner) (*models.Record, error) {
	rec := &models.Record{}
	var payload []byte
	err := row.Scan(&rec.ID, &rec.Workspace, &rec.Collection, &rec.Version,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt, &payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Record, error) {
	rec, err := r.scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		if mapped := pgerr.Map(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}
