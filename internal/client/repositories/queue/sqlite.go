package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
)

// SQLiteRepository stores queued operations in the local database. The seq
// column is the FIFO position; moving to tail deletes and re-inserts so the
// row gets a fresh seq.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, op *models.QueuedOp) error {
	payload, err := json.Marshal(op.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	query := `INSERT INTO sync_queue (id, collection, action, payload, target_id, enqueued_at, attempts)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		op.ID, op.Collection, string(op.Action), string(payload), op.TargetID,
		op.EnqueuedAt.UTC().Format(time.RFC3339Nano), op.Attempts)
	if err != nil {
		return fmt.Errorf("failed to append queued op: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.QueuedOp, error) {
	query := `SELECT id, collection, action, payload, target_id, enqueued_at, attempts
			FROM sync_queue ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select queued ops: %w", err)
	}
	defer rows.Close()

	var result []*models.QueuedOp
	for rows.Next() {
		op, err := scanOp(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Len(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count queued ops: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove queued op: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MoveToTail(ctx context.Context, id string, attempts int) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, collection, action, payload, target_id, enqueued_at, attempts
			FROM sync_queue WHERE id = ?`, id)
		op, err := scanOp(row)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
			return err
		}

		payload, err := json.Marshal(op.Payload)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sync_queue (id, collection, action, payload, target_id, enqueued_at, attempts)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			op.ID, op.Collection, string(op.Action), string(payload), op.TargetID,
			op.EnqueuedAt.UTC().Format(time.RFC3339Nano), attempts)
		return err
	})
}

func (r *SQLiteRepository) TrimOldest(ctx context.Context, n int) error {
	query := `DELETE FROM sync_queue WHERE seq IN (SELECT seq FROM sync_queue ORDER BY seq LIMIT ?)`
	_, err := r.db.ExecContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("failed to trim queue: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOp(row rowScanner) (*models.QueuedOp, error) {
	var op models.QueuedOp
	var action, payload, enqueuedAt string
	if err := row.Scan(&op.ID, &op.Collection, &action, &payload, &op.TargetID, &enqueuedAt, &op.Attempts); err != nil {
		return nil, err
	}
	op.Action = models.Action(action)
	if payload != "" && payload != "null" {
		if err := json.Unmarshal([]byte(payload), &op.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	t, err := time.Parse(time.RFC3339Nano, enqueuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse enqueued_at: %w", err)
	}
	op.EnqueuedAt = t
	return &op, nil
}
