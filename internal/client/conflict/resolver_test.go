package conflict

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api/apitest"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/store"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/retry"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	levels   []ui.Level
}

func (n *recordingNotifier) Notify(level ui.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels = append(n.levels, level)
	n.messages = append(n.messages, message)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newResolver(t *testing.T) (*Resolver, *apitest.Fake, *recordingNotifier) {
	t.Helper()
	fake := apitest.NewFake()
	policy := retry.NewPolicy()
	s := store.New(fake, policy, testLogger())
	n := &recordingNotifier{}
	return NewResolver(s, n, testLogger()), fake, n
}

func TestMergeFields_LocalWinsOnDiffer(t *testing.T) {
	local := &models.Record{Fields: map[string]any{"price": 10.0, "name": "X"}}
	remote := &models.Record{Version: 5, Fields: map[string]any{"price": 12.0, "name": "X", "version": 5}}

	merged := MergeFields(local, remote)
	assert.Equal(t, map[string]any{"price": 10.0, "name": "X"}, merged)
}

func TestMergeFields_SystemFieldsNeverMove(t *testing.T) {
	local := &models.Record{Fields: map[string]any{
		"name":       "Barfi",
		"updated_at": "2020-01-01",
		"created_by": "someone-else",
	}}
	remote := &models.Record{Fields: map[string]any{"name": "Burfi"}}

	merged := MergeFields(local, remote)
	assert.Equal(t, "Barfi", merged["name"])
	assert.NotContains(t, merged, "updated_at")
	assert.NotContains(t, merged, "created_by")
}

func TestResolve_MergeWritesWithRemoteVersion(t *testing.T) {
	r, fake, _ := newResolver(t)
	ctx := context.Background()

	fake.Seed(common.CollectionRecipes, &models.Record{
		ID: "rc-1", Version: 5,
		Fields: map[string]any{"name": "X", "price": 12.0},
	})

	local := &models.Record{ID: "rc-1", Version: 4, Fields: map[string]any{"name": "X", "price": 10.0}}
	remote := fake.Stored(common.CollectionRecipes, "rc-1")

	rec, err := r.Resolve(ctx, common.CollectionRecipes, local, remote, Merge)
	require.NoError(t, err)
	assert.Equal(t, 10.0, rec.Fields["price"])
	assert.Equal(t, int64(6), rec.Version, "write with lock token 5 bumps to 6")
}

func TestResolve_UseRemoteDiscardsLocal(t *testing.T) {
	r, fake, _ := newResolver(t)
	ctx := context.Background()

	local := &models.Record{ID: "rc-1", Fields: map[string]any{"price": 1.0}}
	remote := &models.Record{ID: "rc-1", Version: 7, Fields: map[string]any{"price": 9.0}}

	rec, err := r.Resolve(ctx, common.CollectionRecipes, local, remote, UseRemote)
	require.NoError(t, err)
	assert.Same(t, remote, rec)
	assert.Equal(t, 0, fake.CallsTo("Update"), "use_remote must not write")
}

func TestResolve_UseLocalForcesOverwrite(t *testing.T) {
	r, fake, _ := newResolver(t)
	ctx := context.Background()

	fake.Seed(common.CollectionIngredients, &models.Record{
		ID: "ing-1", Version: 3,
		Fields: map[string]any{"name": "Ghee", "price_per_unit": 600.0},
	})

	local := &models.Record{ID: "ing-1", Version: 2, Fields: map[string]any{"name": "Ghee", "price_per_unit": 640.0}}
	remote := fake.Stored(common.CollectionIngredients, "ing-1")

	rec, err := r.Resolve(ctx, common.CollectionIngredients, local, remote, UseLocal)
	require.NoError(t, err)
	assert.Equal(t, 640.0, rec.Fields["price_per_unit"])
}

func TestResolve_SecondConflictPropagates(t *testing.T) {
	r, fake, _ := newResolver(t)
	ctx := context.Background()

	fake.Seed(common.CollectionIngredients, &models.Record{
		ID: "ing-1", Version: 4,
		Fields: map[string]any{"price_per_unit": 100.0},
	})

	// the caller's remote snapshot is already stale again
	local := &models.Record{ID: "ing-1", Fields: map[string]any{"price_per_unit": 90.0}}
	remote := &models.Record{ID: "ing-1", Version: 3, Fields: map[string]any{"price_per_unit": 95.0}}

	_, err := r.Resolve(ctx, common.CollectionIngredients, local, remote, UseLocal)
	require.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestAutoResolve_KeepsRemoteAndWarns(t *testing.T) {
	r, _, n := newResolver(t)

	local := &models.Record{ID: "st-1", Fields: map[string]any{"monthly_salary": 14000.0}}
	remote := &models.Record{ID: "st-1", Version: 2, Fields: map[string]any{"monthly_salary": 15000.0}}

	rec := r.AutoResolve(context.Background(), common.CollectionStaff, local, remote)
	assert.Same(t, remote, rec)
	require.Len(t, n.messages, 1)
	assert.Equal(t, ui.LevelWarning, n.levels[0])
	assert.Contains(t, n.messages[0], common.CollectionStaff)
}
