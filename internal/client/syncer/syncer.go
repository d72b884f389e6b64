// Package syncer orchestrates saves: it debounces rapid re-submissions,
// routes writes to the backend or the offline queue depending on
// connectivity, settles version conflicts through the resolver and drains
// the queue when the connection comes back.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/changelog"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/conflict"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/store"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
)

const (
	// DebounceInterval is how long a save sits before it is sent. A newer
	// save for the same target within the window supersedes it.
	DebounceInterval = 300 * time.Millisecond

	// SettleDelay is the pause between detecting the connection is back and
	// draining the queue, so a flapping link does not trigger a half drain.
	SettleDelay = time.Second

	// PingInterval is the connectivity probe period.
	PingInterval = 10 * time.Second
)

// Result classifies how a save request ended.
type Result string

const (
	// ResultSaved means the mutation landed on the backend.
	ResultSaved Result = "saved"
	// ResultQueued means the mutation was written to the offline queue.
	ResultQueued Result = "queued"
	// ResultSuperseded means a newer save for the same target replaced this
	// one before it was sent.
	ResultSuperseded Result = "superseded"
	// ResultFailed means the backend rejected the mutation.
	ResultFailed Result = "failed"
)

// Outcome is the terminal state of one Save call. Every call gets exactly
// one outcome, including superseded ones.
type Outcome struct {
	Result Result
	Record *models.Record
	Err    error
}

// Request is one mutation to save.
type Request struct {
	Collection string
	Action     models.Action
	// TargetID names the record for updates and deletes; empty for creates.
	TargetID string
	Fields   map[string]any
	// ExpectedVersion is the optimistic lock token for updates.
	ExpectedVersion int64
}

func (r Request) key() string { return r.Collection + "/" + r.TargetID }

type pendingSave struct {
	ctx   context.Context
	req   Request
	out   chan Outcome
	timer *time.Timer
}

// Syncer is the save orchestrator. Construct with New, then Start to run
// the connectivity watcher.
type Syncer struct {
	store    *store.Store
	log      *changelog.Log
	client   api.Client
	resolver *conflict.Resolver
	prompt   ui.ConflictPrompt
	status   ui.StatusReporter
	notifier ui.Notifier
	logger   logging.Logger

	debounce     time.Duration
	settle       time.Duration
	pingInterval time.Duration

	online atomic.Bool

	mu      sync.Mutex
	pending map[string]*pendingSave

	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

func New(st *store.Store, log *changelog.Log, client api.Client, resolver *conflict.Resolver,
	prompt ui.ConflictPrompt, status ui.StatusReporter, notifier ui.Notifier, logger logging.Logger) *Syncer {
	s := &Syncer{
		store:        st,
		log:          log,
		client:       client,
		resolver:     resolver,
		prompt:       prompt,
		status:       status,
		notifier:     notifier,
		logger:       logger.With("module", "syncer"),
		debounce:     DebounceInterval,
		settle:       SettleDelay,
		pingInterval: PingInterval,
		pending:      make(map[string]*pendingSave),
	}
	s.online.Store(true)
	return s
}

// Online reports the last observed connectivity state.
func (s *Syncer) Online() bool { return s.online.Load() }

// SetProbeInterval overrides how often the connectivity watcher pings.
// Call before Start.
func (s *Syncer) SetProbeInterval(d time.Duration) {
	if d > 0 {
		s.pingInterval = d
	}
}

// Save schedules a mutation. It returns immediately; the channel delivers
// exactly one Outcome once the debounce window closes and the save settles.
// A newer Save for the same collection and target within the window takes
// its place, and the displaced call resolves with ResultSuperseded.
func (s *Syncer) Save(ctx context.Context, req Request) <-chan Outcome {
	out := make(chan Outcome, 1)
	key := req.key()

	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
		prev.out <- Outcome{Result: ResultSuperseded}
		close(prev.out)
	}
	p := &pendingSave{ctx: ctx, req: req, out: out}
	p.timer = time.AfterFunc(s.debounce, func() { s.flush(key) })
	s.pending[key] = p
	s.mu.Unlock()

	return out
}

func (s *Syncer) flush(key string) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	p.out <- s.perform(p.ctx, p.req)
	close(p.out)
}

func (s *Syncer) perform(ctx context.Context, req Request) Outcome {
	if !s.online.Load() {
		return s.enqueue(ctx, req)
	}

	s.status.SaveStatus(ui.StatusSaving)

	rec, err := s.execute(ctx, req)
	switch {
	case err == nil:
		s.status.SaveStatus(ui.StatusSuccess)
		return Outcome{Result: ResultSaved, Record: rec}

	case errors.Is(err, common.ErrUnavailable):
		// the link dropped mid-save; park the mutation and flip offline
		s.online.Store(false)
		return s.enqueue(ctx, req)

	case errors.Is(err, common.ErrVersionConflict) && req.Action == models.ActionUpdate:
		return s.resolveConflict(ctx, req)

	default:
		s.status.SaveStatus(ui.StatusError)
		s.notifier.Notify(ui.LevelError, common.UserMessage(err))
		return Outcome{Result: ResultFailed, Err: err}
	}
}

func (s *Syncer) execute(ctx context.Context, req Request) (*models.Record, error) {
	switch req.Action {
	case models.ActionCreate:
		return s.store.Create(ctx, req.Collection, req.Fields)
	case models.ActionUpdate:
		return s.store.Update(ctx, req.Collection, req.TargetID, req.Fields, req.ExpectedVersion)
	case models.ActionDelete:
		return nil, s.store.Delete(ctx, req.Collection, req.TargetID)
	}
	return nil, fmt.Errorf("%w: unknown action %q", common.ErrInternal, req.Action)
}

// enqueue parks the mutation in the change log and reports offline status.
func (s *Syncer) enqueue(ctx context.Context, req Request) Outcome {
	op := &models.QueuedOp{
		Collection: req.Collection,
		Action:     req.Action,
		Payload:    req.Fields,
		TargetID:   req.TargetID,
	}
	if err := s.log.Enqueue(ctx, op); err != nil {
		s.status.SaveStatus(ui.StatusError)
		return Outcome{Result: ResultFailed, Err: fmt.Errorf("queue save: %w", err)}
	}

	s.status.SaveStatus(ui.StatusOffline)
	s.reportQueueLength(ctx)
	return Outcome{Result: ResultQueued}
}

// resolveConflict fetches the winning remote snapshot and lets the user
// (or the auto-resolver, when no prompt is available) settle the clash.
func (s *Syncer) resolveConflict(ctx context.Context, req Request) Outcome {
	remote, err := s.store.GetByID(ctx, req.Collection, req.TargetID)
	if err != nil {
		s.status.SaveStatus(ui.StatusError)
		s.notifier.Notify(ui.LevelError, common.UserMessage(err))
		return Outcome{Result: ResultFailed, Err: err}
	}

	local := &models.Record{
		ID:      req.TargetID,
		Version: req.ExpectedVersion,
		Fields:  req.Fields,
	}

	var resolved *models.Record
	if strategy, ok := s.chooseStrategy(req.Collection, local, remote); ok {
		resolved, err = s.resolver.Resolve(ctx, req.Collection, local, remote, strategy)
		if err != nil {
			s.status.SaveStatus(ui.StatusError)
			s.notifier.Notify(ui.LevelError, common.UserMessage(err))
			return Outcome{Result: ResultFailed, Err: err}
		}
	} else {
		resolved = s.resolver.AutoResolve(ctx, req.Collection, local, remote)
	}

	s.status.SaveStatus(ui.StatusSuccess)
	return Outcome{Result: ResultSaved, Record: resolved}
}

func (s *Syncer) chooseStrategy(collection string, local, remote *models.Record) (conflict.Strategy, bool) {
	if s.prompt == nil {
		return "", false
	}
	choice, ok := s.prompt.Choose(collection, local, remote)
	if !ok {
		return "", false
	}
	switch st := conflict.Strategy(choice); st {
	case conflict.UseLocal, conflict.UseRemote, conflict.Merge:
		return st, true
	}
	return "", false
}

// Start runs the connectivity watcher until Stop. Each probe period it
// pings the backend; on an offline-to-online transition it waits for the
// link to settle and then drains the offline queue.
func (s *Syncer) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	s.watchDone = make(chan struct{})

	go func() {
		defer close(s.watchDone)
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.probe(runCtx)
			}
		}
	}()
}

// Stop halts the connectivity watcher.
func (s *Syncer) Stop() {
	if s.watchCancel == nil {
		return
	}
	s.watchCancel()
	<-s.watchDone
	s.watchCancel = nil
}

func (s *Syncer) probe(ctx context.Context) {
	err := s.client.Ping(ctx)
	nowOnline := err == nil
	wasOnline := s.online.Swap(nowOnline)

	switch {
	case wasOnline && !nowOnline:
		s.logger.Warn(ctx, "backend unreachable, entering offline mode", "error", err)
		s.status.SaveStatus(ui.StatusOffline)

	case !wasOnline && nowOnline:
		s.logger.Info(ctx, "backend reachable again, draining queue")
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.settle):
		}
		s.Drain(ctx)
	}
}

// Drain replays every queued mutation in FIFO order. Safe to call while a
// drain is already running; the second call is a no-op.
func (s *Syncer) Drain(ctx context.Context) {
	applied, dropped, err := s.log.ProcessQueue(ctx, s.apply)
	if err != nil {
		s.logger.Error(ctx, "queue drain failed", "error", err)
		return
	}
	if applied > 0 || dropped > 0 {
		s.logger.Info(ctx, "queue drained", "applied", applied, "dropped", dropped)
	}
	if applied > 0 {
		s.notifier.Notify(ui.LevelSuccess, fmt.Sprintf("Synced %d offline change(s)", applied))
	}
	s.reportQueueLength(ctx)
}

// apply replays one queued mutation against the backend. Updates replay
// unconditionally: the queued edit is the newest the user made, and the
// lock token it may have carried is stale by definition.
func (s *Syncer) apply(ctx context.Context, op *models.QueuedOp) error {
	switch op.Action {
	case models.ActionCreate:
		_, err := s.store.Create(ctx, op.Collection, op.Payload)
		return err
	case models.ActionUpdate:
		_, err := s.store.Update(ctx, op.Collection, op.TargetID, op.Payload, 0)
		return err
	case models.ActionDelete:
		return s.store.Delete(ctx, op.Collection, op.TargetID)
	}
	return fmt.Errorf("%w: unknown queued action %q", common.ErrInternal, op.Action)
}

func (s *Syncer) reportQueueLength(ctx context.Context) {
	n, err := s.log.Len(ctx)
	if err != nil {
		s.logger.Error(ctx, "queue length unavailable", "error", err)
		return
	}
	s.status.QueueLength(n)
}
