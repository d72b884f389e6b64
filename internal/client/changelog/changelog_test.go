package changelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/repositories/queue"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"

	_ "modernc.org/sqlite"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(level ui.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func newLog(t *testing.T) (*Log, *recordingNotifier) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
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

	n := &recordingNotifier{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(queue.NewSQLiteRepository(db), n, logger), n
}

func createOp(name string) *models.QueuedOp {
	return &models.QueuedOp{
		Collection: common.CollectionIngredients,
		Action:     models.ActionCreate,
		Payload:    map[string]any{"name": name},
	}
}

func TestEnqueue_CapacityBound(t *testing.T) {
	l, _ := newLog(t)
	ctx := context.Background()

	for i := 0; i < MaxEntries+1; i++ {
		require.NoError(t, l.Enqueue(ctx, createOp(fmt.Sprintf("ing-%03d", i))))
	}

	n, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxEntries, n)

	// the oldest entry is gone, the 100 most recent remain
	var names []string
	_, _, err = l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		names = append(names, op.Payload["name"].(string))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, names, MaxEntries)
	assert.Equal(t, "ing-001", names[0])
	assert.Equal(t, fmt.Sprintf("ing-%03d", MaxEntries), names[len(names)-1])
}

func TestProcessQueue_AppliesInFIFOOrder(t *testing.T) {
	l, _ := newLog(t)
	ctx := context.Background()

	require.NoError(t, l.Enqueue(ctx, createOp("first")))
	require.NoError(t, l.Enqueue(ctx, createOp("second")))

	var applied []string
	n, dropped, err := l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		applied = append(applied, op.Payload["name"].(string))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, []string{"first", "second"}, applied)

	remaining, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestProcessQueue_FailTwiceThenSucceed(t *testing.T) {
	l, _ := newLog(t)
	ctx := context.Background()

	require.NoError(t, l.Enqueue(ctx, createOp("Sugar")))

	calls := 0
	applied, dropped, err := l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		calls++
		if calls < 3 {
			return common.ErrUnavailable
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "third replay must be the one that lands")
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, dropped)

	n, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "operation must be removed after success")
}

func TestProcessQueue_DroppedAfterThreeFailuresWithWarning(t *testing.T) {
	l, notifier := newLog(t)
	ctx := context.Background()

	require.NoError(t, l.Enqueue(ctx, createOp("Sugar")))

	calls := 0
	applied, dropped, err := l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		calls++
		return errors.New("backend rejects everything")
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 1, dropped)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "discarded")

	n, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProcessQueue_FailedOpGoesToTail(t *testing.T) {
	l, _ := newLog(t)
	ctx := context.Background()

	require.NoError(t, l.Enqueue(ctx, createOp("flaky")))
	require.NoError(t, l.Enqueue(ctx, createOp("steady")))

	var order []string
	_, _, err := l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		name := op.Payload["name"].(string)
		order = append(order, name)
		if name == "flaky" && len(order) == 1 {
			return common.ErrUnavailable
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky", "steady", "flaky"}, order,
		"failed head must round-robin behind the rest")
}

func TestProcessQueue_ConcurrentDrainIsNoOp(t *testing.T) {
	l, _ := newLog(t)
	ctx := context.Background()

	require.NoError(t, l.Enqueue(ctx, createOp("only")))

	entered := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	applied, dropped, err := l.ProcessQueue(ctx, func(ctx context.Context, op *models.QueuedOp) error {
		t.Fatal("second drain must not run")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, dropped)

	close(release)
	<-done
}
