package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/changelog"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/repositories/metadata"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
)

const (
	metaKeyLegacySnapshot  = "legacy.snapshot"
	metaKeyMigratedVersion = "migration.version"

	// migrationVersion marks the completed import. Bump only when the
	// snapshot format changes and deserves a re-run.
	migrationVersion = "1"
)

// legacySnapshot is the single-document export of the pre-normalization
// client, where one JSON blob held every collection.
type legacySnapshot struct {
	Ingredients []map[string]any `json:"ingredients"`
	Recipes     []map[string]any `json:"recipes"`
	Staff       []map[string]any `json:"staff"`
	Settings    map[string]any   `json:"settings"`
}

// MigrationService imports a legacy single-blob snapshot into the normalized
// collections, exactly once per device. The imported rows go through the
// change log so they replay like any other offline mutation and get proper
// server-side ids, versions and audit entries.
type MigrationService struct {
	db     *sql.DB
	log    *changelog.Log
	logger logging.Logger
}

func NewMigrationService(db *sql.DB, log *changelog.Log, logger logging.Logger) *MigrationService {
	return &MigrationService{db: db, log: log, logger: logger.With("module", "migration")}
}

// Run performs the import when a legacy snapshot exists and this version of
// the migration has not run yet. It returns the number of queued records.
func (s *MigrationService) Run(ctx context.Context) (int, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	done, err := repo.Get(ctx, metaKeyMigratedVersion)
	if err != nil {
		return 0, err
	}
	if string(done) == migrationVersion {
		return 0, nil
	}

	blob, err := repo.Get(ctx, metaKeyLegacySnapshot)
	if err != nil {
		return 0, err
	}
	if blob == nil {
		// nothing to import, just record that we looked
		return 0, repo.Set(ctx, metaKeyMigratedVersion, []byte(migrationVersion))
	}

	var snap legacySnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return 0, fmt.Errorf("legacy snapshot is not valid JSON: %w", err)
	}

	queued := 0
	enqueue := func(collection string, fields map[string]any) error {
		if len(fields) == 0 {
			return nil
		}
		op := &models.QueuedOp{Collection: collection, Action: models.ActionCreate, Payload: fields}
		if err := s.log.Enqueue(ctx, op); err != nil {
			return fmt.Errorf("queue legacy %s: %w", collection, err)
		}
		queued++
		return nil
	}

	for _, fields := range snap.Ingredients {
		if err := enqueue(common.CollectionIngredients, fields); err != nil {
			return queued, err
		}
	}
	for _, fields := range snap.Recipes {
		if err := enqueue(common.CollectionRecipes, fields); err != nil {
			return queued, err
		}
	}
	for _, fields := range snap.Staff {
		if err := enqueue(common.CollectionStaff, fields); err != nil {
			return queued, err
		}
	}
	if err := enqueue(common.CollectionSettings, snap.Settings); err != nil {
		return queued, err
	}

	if err := repo.Delete(ctx, metaKeyLegacySnapshot); err != nil {
		return queued, err
	}
	if err := repo.Set(ctx, metaKeyMigratedVersion, []byte(migrationVersion)); err != nil {
		return queued, err
	}

	s.logger.Info(ctx, "legacy snapshot imported", "records", queued)
	return queued, nil
}
