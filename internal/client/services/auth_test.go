package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api/apitest"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key TEXT PRIMARY KEY,
  value BLOB
);
CREATE TABLE sync_queue (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  collection TEXT NOT NULL,
  action TEXT NOT NULL,
  payload TEXT,
  target_id TEXT NOT NULL DEFAULT '',
  enqueued_at TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestOfflineLogin_RequiresPriorOnlineLogin(t *testing.T) {
	db := setupDB(t)
	fake := apitest.NewFake()
	svc := NewAuthService(fake, db)
	ctx := context.Background()

	err := svc.OfflineLogin(ctx, "owner@gokulsweets.in", []byte("secret"))
	assert.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
}

func TestOnlineLogin_CachesCredentialsForOffline(t *testing.T) {
	db := setupDB(t)
	fake := apitest.NewFake()
	svc := NewAuthService(fake, db)
	ctx := context.Background()

	session, err := svc.OnlineLogin(ctx, "owner@gokulsweets.in", []byte("secret"))
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "owner@gokulsweets.in", session.Email)

	// same credentials now work without the server
	require.NoError(t, svc.OfflineLogin(ctx, "owner@gokulsweets.in", []byte("secret")))

	// wrong password or wrong email stay out
	assert.ErrorIs(t, svc.OfflineLogin(ctx, "owner@gokulsweets.in", []byte("wrong")), common.ErrUnauthorized)
	assert.ErrorIs(t, svc.OfflineLogin(ctx, "thief@example.com", []byte("secret")), common.ErrUnauthorized)
}

func TestOnlineLogin_ServerDownSurfacesUnavailable(t *testing.T) {
	db := setupDB(t)
	fake := apitest.NewFake()
	fake.SetOnline(false)
	svc := NewAuthService(fake, db)

	_, err := svc.OnlineLogin(context.Background(), "owner@gokulsweets.in", []byte("secret"))
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestClearOfflineData(t *testing.T) {
	db := setupDB(t)
	fake := apitest.NewFake()
	svc := NewAuthService(fake, db)
	ctx := context.Background()

	_, err := svc.OnlineLogin(ctx, "owner@gokulsweets.in", []byte("secret"))
	require.NoError(t, err)

	require.NoError(t, svc.ClearOfflineData(ctx))
	assert.ErrorIs(t, svc.OfflineLogin(ctx, "owner@gokulsweets.in", []byte("secret")), common.ErrLocalDataNotAvailable)
}
