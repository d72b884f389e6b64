// Package conflict resolves concurrent edits of one record. The resolver is
// stateless: every call works on two in-memory snapshots, the caller's local
// copy and the server's current one.
package conflict

import (
	"context"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/store"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/ui"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
)

// Strategy selects how a conflict is settled.
type Strategy string

const (
	// UseLocal overwrites the server with the local data, taking the
	// remote's version as the lock token so the single retry succeeds.
	UseLocal Strategy = "use_local"
	// UseRemote discards local edits and keeps the server snapshot.
	UseRemote Strategy = "use_remote"
	// Merge starts from the remote snapshot and overwrites every differing
	// non-system field with the local value. Field-level local-wins, not a
	// semantic merge.
	Merge Strategy = "merge"
)

type Resolver struct {
	store    *store.Store
	notifier ui.Notifier
	logger   logging.Logger
}

func NewResolver(s *store.Store, notifier ui.Notifier, logger logging.Logger) *Resolver {
	return &Resolver{
		store:    s,
		notifier: notifier,
		logger:   logger.With("module", "conflict"),
	}
}

// Resolve settles a conflict between local and remote with the given
// strategy and returns the record the caller should hold afterwards.
//
// If the persisting write for UseLocal or Merge hits a second version
// conflict (the server moved again in between), the error propagates; the
// resolver never loops.
func (r *Resolver) Resolve(ctx context.Context, collection string, local, remote *models.Record, strategy Strategy) (*models.Record, error) {
	switch strategy {
	case UseRemote:
		return remote, nil

	case UseLocal:
		rec, err := r.store.Update(ctx, collection, remote.ID, userFields(local), remote.Version)
		if err != nil {
			return nil, fmt.Errorf("resolve use_local: %w", err)
		}
		return rec, nil

	case Merge:
		merged := MergeFields(local, remote)
		rec, err := r.store.Update(ctx, collection, remote.ID, merged, remote.Version)
		if err != nil {
			return nil, fmt.Errorf("resolve merge: %w", err)
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("unknown conflict strategy %q", strategy)
	}
}

// AutoResolve is the non-interactive fallback: keep the remote snapshot and
// tell the user which collection was affected.
func (r *Resolver) AutoResolve(ctx context.Context, collection string, local, remote *models.Record) *models.Record {
	r.logger.Warn(ctx, "conflict auto-resolved with remote data",
		"collection", collection, "record", remote.ID)
	r.notifier.Notify(ui.LevelWarning,
		fmt.Sprintf("Your change to %s was overridden by a newer edit from another device.", collection))
	return remote
}

// MergeFields computes the merge payload: the remote's user fields as the
// base, overwritten by every local user field that differs. System fields
// (id, workspace, version, timestamps, creator) never move.
func MergeFields(local, remote *models.Record) map[string]any {
	merged := userFields(remote)
	for k, v := range local.Fields {
		if models.IsSystemField(k) {
			continue
		}
		if cur, ok := merged[k]; !ok || !equalField(cur, v) {
			merged[k] = v
		}
	}
	return merged
}

func userFields(rec *models.Record) map[string]any {
	out := make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		if models.IsSystemField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func equalField(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
