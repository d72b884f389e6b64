// Package audit persists the append-only mutation history shown in the
// workspace activity view.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return err
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_log (workspace, user_id, user_email, collection, record_id, action, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, at
	`
	err = r.db.QueryRowContext(ctx, query,
		entry.Workspace, entry.UserID, entry.UserEmail, entry.Collection,
		entry.RecordID, entry.Action, before, after).Scan(&entry.ID, &entry.At)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, workspace string, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, workspace, user_id, user_email, collection, record_id, action, before, after, at
		FROM audit_log
		WHERE workspace = $1
		ORDER BY at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, workspace, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		var before, after []byte
		if err := rows.Scan(&entry.ID, &entry.Workspace, &entry.UserID, &entry.UserEmail,
			&entry.Collection, &entry.RecordID, &entry.Action, &before, &after, &entry.At); err != nil {
			return nil, err
		}
		if entry.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, err
		}
		if entry.After, err = unmarshalSnapshot(after); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func marshalSnapshot(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

func unmarshalSnapshot(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return m, nil
}
