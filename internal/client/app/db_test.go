package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "costbook.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx,
		`INSERT INTO sync_queue (id, collection, action, enqueued_at) VALUES ('q1', 'ingredients', 'create', '2026-01-01T00:00:00Z')`)
	assert.NoError(t, err, "sync_queue table must exist")

	_, err = db.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES ('k', 'v')`)
	assert.NoError(t, err, "metadata table must exist")

	// re-running migrations on an up-to-date database is a no-op
	assert.NoError(t, RunMigrations(ctx, db))
}
