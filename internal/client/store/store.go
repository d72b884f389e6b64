// Package store is the record store adapter: generic CRUD against named
// remote collections with bounded retry, duplicate pre-checks and
// optimistic-version writes. Every call is scoped to the caller's workspace
// by the backend session.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/retry"
)

const listCacheTTL = 30 * time.Second

// Store wraps the backend client with the shared retry policy and a short
// TTL list cache. The cache is invalidated on every local mutation and by
// realtime events.
type Store struct {
	client api.Client
	policy *retry.Policy
	cache  *gocache.Cache
	logger logging.Logger
}

func New(client api.Client, policy *retry.Policy, logger logging.Logger) *Store {
	if policy == nil {
		policy = retry.NewPolicy()
	}
	return &Store{
		client: client,
		policy: policy,
		cache:  gocache.New(listCacheTTL, time.Minute),
		logger: logger.With("module", "store"),
	}
}

// Create inserts a record, stamping the creating user server-side. For
// name-bearing collections a case-insensitive duplicate check runs first.
func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (*models.Record, error) {
	if err := s.checkDuplicateName(ctx, collection, fields, ""); err != nil {
		return nil, err
	}

	var rec *models.Record
	err := s.policy.Do(ctx, func() error {
		var err error
		rec, err = s.client.Create(ctx, collection, fields)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}

	s.InvalidateCache(collection)
	return rec, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (*models.Record, error) {
	var rec *models.Record
	err := s.policy.Do(ctx, func() error {
		var err error
		rec, err = s.client.Get(ctx, collection, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// List returns all records of a collection, served from the short TTL cache
// when fresh.
func (s *Store) List(ctx context.Context, collection string) ([]*models.Record, error) {
	if cached, ok := s.cache.Get(collection); ok {
		return cached.([]*models.Record), nil
	}

	var recs []*models.Record
	err := s.policy.Do(ctx, func() error {
		var err error
		recs, err = s.client.List(ctx, collection, api.Filter{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	s.cache.Set(collection, recs, gocache.DefaultExpiration)
	return recs, nil
}

// Update submits a conditional write: when expectedVersion is non-zero the
// backend applies it only if the stored version still matches, otherwise a
// version-conflict error carrying both versions comes back. The write is a
// single compare-and-swap at the backend, so there is no window between
// check and write.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	if err := s.checkDuplicateName(ctx, collection, fields, id); err != nil {
		return nil, err
	}

	var rec *models.Record
	err := s.policy.Do(ctx, func() error {
		var err error
		rec, err = s.client.Update(ctx, collection, id, fields, expectedVersion)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	s.InvalidateCache(collection)
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	err := s.policy.Do(ctx, func() error {
		return s.client.Delete(ctx, collection, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	s.InvalidateCache(collection)
	return nil
}

// InvalidateCache drops the cached listing for a collection. The realtime
// listener calls this when a foreign change arrives.
func (s *Store) InvalidateCache(collection string) {
	s.cache.Delete(collection)
}

// checkDuplicateName looks for another record in the workspace whose name
// matches case-insensitively, excluding excludeID on updates. A hit raises
// a duplicate error naming the field before any write is attempted.
func (s *Store) checkDuplicateName(ctx context.Context, collection string, fields map[string]any, excludeID string) error {
	if !common.NameBearing(collection) {
		return nil
	}
	name, _ := fields["name"].(string)
	if name == "" {
		return nil
	}

	var hits []*models.Record
	err := s.policy.Do(ctx, func() error {
		var err error
		hits, err = s.client.List(ctx, collection, api.Filter{NameFold: name, ExcludeID: excludeID})
		return err
	})
	if err != nil {
		return fmt.Errorf("duplicate check %s: %w", collection, err)
	}

	for _, h := range hits {
		if strings.EqualFold(h.Name(), name) {
			return &common.DuplicateError{Field: "name", Value: name}
		}
	}
	return nil
}
