// Package realtime keeps the client's view of the workspace live: it holds
// one change-feed subscription open, fans incoming events out to
// per-collection callbacks and surfaces edits made by other users.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
)

const reconnectDelay = 5 * time.Second

// Handler receives one change event for the collection it subscribed to.
type Handler func(models.Event)

// Invalidator drops cached list results for a collection when a change
// event arrives for it. *store.Store satisfies it.
type Invalidator interface {
	InvalidateCache(collection string)
}

// Listener multiplexes the single backend change feed to any number of
// per-collection handlers. A handler registered with On keeps receiving
// events until its returned unsubscribe func is called.
type Listener struct {
	client   api.Client
	cache    Invalidator
	notifier ui.Notifier
	logger   logging.Logger

	// retryDelay is how long to wait before the single reconnect attempt
	// after a feed timeout. Shortened in tests.
	retryDelay time.Duration

	mu     sync.Mutex
	subs   map[string]map[int]Handler
	nextID int
	feed   api.Feed
	cancel context.CancelFunc
	done   chan struct{}
}

func NewListener(client api.Client, cache Invalidator, notifier ui.Notifier, logger logging.Logger) *Listener {
	return &Listener{
		client:     client,
		cache:      cache,
		notifier:   notifier,
		logger:     logger,
		retryDelay: reconnectDelay,
		subs:       make(map[string]map[int]Handler),
	}
}

// On registers a handler for one collection. The returned func removes it.
func (l *Listener) On(collection string, h Handler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.subs[collection] == nil {
		l.subs[collection] = make(map[int]Handler)
	}
	id := l.nextID
	l.nextID++
	l.subs[collection][id] = h

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs[collection], id)
	}
}

// Init opens the feed for the given collections and starts dispatching.
// It returns once the subscription is established; events are delivered
// from a background goroutine until Cleanup is called or the feed dies.
func (l *Listener) Init(ctx context.Context, collections []string) error {
	feed, err := l.client.Subscribe(ctx, collections)
	if err != nil {
		return fmt.Errorf("realtime subscribe: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	l.mu.Lock()
	l.feed = feed
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go l.run(runCtx, feed, collections, done)
	return nil
}

// Cleanup closes the subscription and waits for the dispatch loop to stop.
func (l *Listener) Cleanup() {
	l.mu.Lock()
	feed, cancel, done := l.feed, l.cancel, l.done
	l.feed, l.cancel, l.done = nil, nil, nil
	l.mu.Unlock()

	if feed == nil {
		return
	}
	cancel()
	_ = feed.Close()
	<-done
}

func (l *Listener) run(ctx context.Context, feed api.Feed, collections []string, done chan struct{}) {
	defer close(done)

	retried := false
	for {
		ev, ok := <-feed.Events()
		if ok {
			l.dispatch(ev)
			continue
		}

		err := feed.Err()
		if err == nil || ctx.Err() != nil {
			return
		}
		if !isTimeout(err) {
			// a protocol or auth failure will not heal on its own
			l.logger.Error(ctx, "change feed failed", "error", err)
			return
		}
		if retried {
			l.logger.Error(ctx, "change feed timed out twice, giving up", "error", err)
			return
		}
		retried = true
		l.logger.Warn(ctx, "change feed timed out, reconnecting", "delay", l.retryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}

		next, subErr := l.client.Subscribe(ctx, collections)
		if subErr != nil {
			l.logger.Error(ctx, "change feed reconnect failed", "error", subErr)
			return
		}
		l.mu.Lock()
		l.feed = next
		l.mu.Unlock()
		feed = next
	}
}

func (l *Listener) dispatch(ev models.Event) {
	if l.cache != nil {
		l.cache.InvalidateCache(ev.Collection)
	}

	l.mu.Lock()
	handlers := make([]Handler, 0, len(l.subs[ev.Collection]))
	for _, h := range l.subs[ev.Collection] {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}

	l.notifyForeign(ev)
}

// notifyForeign raises a toast when the change was made by someone else in
// the workspace, so the user knows why their screen just moved.
func (l *Listener) notifyForeign(ev models.Event) {
	session := l.client.Session()
	if session == nil || ev.ActorID == "" || ev.ActorID == session.UserID {
		return
	}
	actor := ev.ActorEmail
	if actor == "" {
		actor = "Another user"
	}
	var verb string
	switch ev.Type {
	case models.EventInsert:
		verb = "added to"
	case models.EventDelete:
		verb = "removed from"
	default:
		verb = "changed in"
	}
	l.notifier.Notify(ui.LevelInfo, fmt.Sprintf("%s %s %s", actor, verb, common.DisplayName(ev.Collection)))
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, common.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
