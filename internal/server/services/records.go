package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/dbx"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/records"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/repomanager"
)

// Publisher pushes change-feed events to connected clients. Implemented by
// the realtime hub.
type Publisher interface {
	Publish(workspace string, ev models.Event)
}

// Actor identifies who performs a mutation, for audit entries and events.
type Actor struct {
	UserID string
	Email  string
}

// RecordService owns all record mutations. Every write lands the row and its
// audit entry in one transaction, then publishes the event after commit.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         Publisher
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, hub Publisher) *RecordService {
	return &RecordService{db: db, repomanager: m, hub: hub}
}

func validCollection(collection string) bool {
	switch collection {
	case common.CollectionIngredients, common.CollectionRecipes,
		common.CollectionStaff, common.CollectionSettings:
		return true
	}
	return false
}

// checkNameFree rejects a write whose name collides, case-insensitively,
// with another record in the collection. The partial unique index backs this
// up against races; the pre-check exists to produce a precise error.
func (s *RecordService) checkNameFree(ctx context.Context, db dbx.DBTX, workspace, collection, name, excludeID string) error {
	if !common.NameBearing(collection) {
		return nil
	}
	if name == "" {
		return fmt.Errorf("name: %w", common.ErrMissingField)
	}

	repo := s.repomanager.Records(db)
	existing, err := repo.List(ctx, workspace, collection, records.Filter{NameFold: name, ExcludeID: excludeID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &common.DuplicateError{Field: "name", Value: name}
	}
	return nil
}

func fieldsName(fields map[string]any) string {
	name, _ := fields["name"].(string)
	return name
}

func (s *RecordService) Create(ctx context.Context, actor Actor, workspace, collection string, fields map[string]any) (*models.Record, error) {
	if !validCollection(collection) {
		return nil, common.ErrNotFound
	}

	var rec *models.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkNameFree(ctx, tx, workspace, collection, fieldsName(fields), ""); err != nil {
			return err
		}

		var err error
		rec, err = s.repomanager.Records(tx).Create(ctx, &models.Record{
			Workspace:  workspace,
			Collection: collection,
			CreatedBy:  actor.UserID,
			Fields:     fields,
		})
		if err != nil {
			return err
		}

		return s.appendAudit(ctx, tx, actor, rec, "create", nil, fields)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(workspace, models.Event{
		Type:       models.EventInsert,
		Collection: collection,
		ActorID:    actor.UserID,
		ActorEmail: actor.Email,
		New:        rec,
	})
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, workspace, collection, id string) (*models.Record, error) {
	if !validCollection(collection) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Records(s.db).GetByID(ctx, workspace, collection, id)
}

func (s *RecordService) List(ctx context.Context, workspace, collection string, f records.Filter) ([]*models.Record, error) {
	if !validCollection(collection) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Records(s.db).List(ctx, workspace, collection, f)
}

func (s *RecordService) Update(ctx context.Context, actor Actor, workspace, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	if !validCollection(collection) {
		return nil, common.ErrNotFound
	}

	var rec *models.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkNameFree(ctx, tx, workspace, collection, fieldsName(fields), id); err != nil {
			return err
		}

		repo := s.repomanager.Records(tx)
		before, err := repo.GetByID(ctx, workspace, collection, id)
		if err != nil {
			return err
		}

		rec, err = repo.Update(ctx, workspace, collection, id, fields, expectedVersion)
		if err != nil {
			return err
		}

		return s.appendAudit(ctx, tx, actor, rec, "update", before.Fields, fields)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(workspace, models.Event{
		Type:       models.EventUpdate,
		Collection: collection,
		ActorID:    actor.UserID,
		ActorEmail: actor.Email,
		New:        rec,
	})
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, actor Actor, workspace, collection, id string) error {
	if !validCollection(collection) {
		return common.ErrNotFound
	}

	var old *models.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)

		if collection == common.CollectionIngredients {
			n, err := repo.CountRecipeLinks(ctx, workspace, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("ingredient used by %d recipe(s): %w", n, common.ErrForeignKey)
			}
		}

		var err error
		old, err = repo.Delete(ctx, workspace, collection, id)
		if err != nil {
			return err
		}

		return s.appendAudit(ctx, tx, actor, old, "delete", old.Fields, nil)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(workspace, models.Event{
		Type:       models.EventDelete,
		Collection: collection,
		ActorID:    actor.UserID,
		ActorEmail: actor.Email,
		Old:        old,
	})
	return nil
}

func (s *RecordService) ListAudit(ctx context.Context, workspace string, limit int) ([]*models.AuditEntry, error) {
	const defaultLimit = 50
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.repomanager.Audit(s.db).List(ctx, workspace, limit)
}

func (s *RecordService) appendAudit(ctx context.Context, tx dbx.DBTX, actor Actor, rec *models.Record, action string, before, after map[string]any) error {
	return s.repomanager.Audit(tx).Append(ctx, &models.AuditEntry{
		Workspace:  rec.Workspace,
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		Collection: rec.Collection,
		RecordID:   rec.ID,
		Action:     action,
		Before:     before,
		After:      after,
	})
}
