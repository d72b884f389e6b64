// Package apitest provides an in-memory fake of the backend client for
// tests: versioned records with compare-and-swap updates, scripted failures
// and a pushable change feed.
package apitest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// Call records one backend invocation for assertions.
type Call struct {
	Method     string
	Collection string
	ID         string
	Fields     map[string]any
}

// Fake implements api.Client against process-local state.
type Fake struct {
	mu      sync.Mutex
	records map[string]map[string]*models.Record
	calls   []Call
	errq    []error
	online  bool
	session *api.Session
	feeds   []*Feed
}

func NewFake() *Fake {
	return &Fake{
		records: make(map[string]map[string]*models.Record),
		online:  true,
		session: &api.Session{UserID: "u-test", Email: "tester@gokulsweets.in", AccessToken: "t"},
	}
}

// SetOnline flips simulated connectivity. While offline every remote call
// fails with common.ErrUnavailable.
func (f *Fake) SetOnline(online bool) {
	f.mu.Lock()
	f.online = online
	f.mu.Unlock()
}

// QueueError makes the next remote call fail with err (one error per call,
// FIFO). Queue the same error several times to fail several calls.
func (f *Fake) QueueError(err error) {
	f.mu.Lock()
	f.errq = append(f.errq, err)
	f.mu.Unlock()
}

// Calls returns the invocation log.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo counts invocations of one method.
func (f *Fake) CallsTo(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Seed inserts a record directly, bypassing the call log.
func (f *Fake) Seed(collection string, rec *models.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[collection] == nil {
		f.records[collection] = make(map[string]*models.Record)
	}
	f.records[collection][rec.ID] = rec.Clone()
}

// Stored returns the stored copy of a record, or nil.
func (f *Fake) Stored(collection, id string) *models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[collection][id].Clone()
}

func (f *Fake) gate(call Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if !f.online {
		return common.ErrUnavailable
	}
	if len(f.errq) > 0 {
		err := f.errq[0]
		f.errq = f.errq[1:]
		return err
	}
	return nil
}

func (f *Fake) Close() error { return nil }

func (f *Fake) Register(ctx context.Context, email, password string) error {
	return f.gate(Call{Method: "Register"})
}

func (f *Fake) Login(ctx context.Context, email, password string) (*api.Session, error) {
	if err := f.gate(Call{Method: "Login"}); err != nil {
		return nil, err
	}
	s := *f.session
	s.Email = email
	return &s, nil
}

func (f *Fake) Session() *api.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *f.session
	return &s
}

func (f *Fake) Ping(ctx context.Context) error {
	return f.gate(Call{Method: "Ping"})
}

func (f *Fake) Create(ctx context.Context, collection string, fields map[string]any) (*models.Record, error) {
	if err := f.gate(Call{Method: "Create", Collection: collection, Fields: fields}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	rec := &models.Record{
		ID:        uuid.NewString(),
		Workspace: common.DefaultWorkspace,
		Version:   1,
		CreatedBy: f.session.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    copyFields(fields),
	}
	if f.records[collection] == nil {
		f.records[collection] = make(map[string]*models.Record)
	}
	f.records[collection][rec.ID] = rec
	return rec.Clone(), nil
}

func (f *Fake) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	if err := f.gate(Call{Method: "Get", Collection: collection, ID: id}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.records[collection][id]
	if rec == nil {
		return nil, common.ErrNotFound
	}
	return rec.Clone(), nil
}

func (f *Fake) List(ctx context.Context, collection string, filter api.Filter) ([]*models.Record, error) {
	if err := f.gate(Call{Method: "List", Collection: collection}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Record
	for _, rec := range f.records[collection] {
		if filter.ExcludeID != "" && rec.ID == filter.ExcludeID {
			continue
		}
		if filter.NameFold != "" && !strings.EqualFold(rec.Name(), filter.NameFold) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (f *Fake) Update(ctx context.Context, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	if err := f.gate(Call{Method: "Update", Collection: collection, ID: id, Fields: fields}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.records[collection][id]
	if rec == nil {
		return nil, common.ErrNotFound
	}
	if expectedVersion > 0 && rec.Version != expectedVersion {
		return nil, &common.VersionConflictError{Expected: expectedVersion, Actual: rec.Version}
	}

	for k, v := range fields {
		if models.IsSystemField(k) {
			continue
		}
		rec.Fields[k] = v
	}
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return rec.Clone(), nil
}

func (f *Fake) Delete(ctx context.Context, collection, id string) error {
	if err := f.gate(Call{Method: "Delete", Collection: collection, ID: id}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[collection][id] == nil {
		return common.ErrNotFound
	}
	delete(f.records[collection], id)
	return nil
}

func (f *Fake) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if err := f.gate(Call{Method: "ListAudit"}); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *Fake) PresignPut(ctx context.Context, filename string) (string, string, error) {
	if err := f.gate(Call{Method: "PresignPut"}); err != nil {
		return "", "", err
	}
	return "key-" + filename, "https://example.invalid/put", nil
}

func (f *Fake) PresignGet(ctx context.Context, key string) (string, error) {
	if err := f.gate(Call{Method: "PresignGet"}); err != nil {
		return "", err
	}
	return "https://example.invalid/get/" + key, nil
}

func (f *Fake) Subscribe(ctx context.Context, collections []string) (api.Feed, error) {
	if err := f.gate(Call{Method: "Subscribe"}); err != nil {
		return nil, err
	}
	feed := NewFeed()
	f.mu.Lock()
	f.feeds = append(f.feeds, feed)
	f.mu.Unlock()
	return feed, nil
}

// LastFeed returns the most recently handed-out feed, or nil.
func (f *Fake) LastFeed() *Feed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.feeds) == 0 {
		return nil
	}
	return f.feeds[len(f.feeds)-1]
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Feed is a pushable api.Feed for realtime tests.
type Feed struct {
	events chan models.Event

	mu     sync.Mutex
	err    error
	closed bool
}

func NewFeed() *Feed {
	return &Feed{events: make(chan models.Event, 32)}
}

func (f *Feed) Events() <-chan models.Event { return f.events }

func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// Push delivers an event to the subscriber.
func (f *Feed) Push(ev models.Event) {
	f.events <- ev
}

// Fail closes the feed with an error, simulating a dropped channel.
func (f *Feed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.err = err
		close(f.events)
	}
}

// IsClosed reports whether the subscriber released the feed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
