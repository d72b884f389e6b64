package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/records"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/repomanager"
)

type recordingHub struct {
	mu     sync.Mutex
	events []models.Event
}

func (h *recordingHub) Publish(workspace string, ev models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHub) all() []models.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Event(nil), h.events...)
}

// txDB returns a throwaway sqlite handle. The in-memory repositories ignore
// it; it only carries the service's transactions.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRecordService(t *testing.T) (*RecordService, *repomanager.InMemoryRepositoryManager, *recordingHub) {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	hub := &recordingHub{}
	return NewRecordService(txDB(t), rm, hub), rm, hub
}

var owner = Actor{UserID: "u-owner", Email: "owner@gokulsweets.in"}

func TestRecordService_Create(t *testing.T) {
	s, _, hub := newRecordService(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients,
		map[string]any{"name": "Ghee", "unit": "kg", "price_per_unit": 620.0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.Version)
	assert.Equal(t, "u-owner", rec.CreatedBy)

	audit, err := s.ListAudit(ctx, "ws1", 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "create", audit[0].Action)
	assert.Equal(t, "owner@gokulsweets.in", audit[0].UserEmail)
	assert.Nil(t, audit[0].Before)
	assert.Equal(t, "Ghee", audit[0].After["name"])

	events := hub.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventInsert, events[0].Type)
	assert.Equal(t, rec.ID, events[0].New.ID)
	assert.Equal(t, "owner@gokulsweets.in", events[0].ActorEmail)
}

func TestRecordService_Create_DuplicateNameFolded(t *testing.T) {
	s, _, hub := newRecordService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "Sugar"})
	require.NoError(t, err)

	_, err = s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "sugar"})
	var dup *common.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name", dup.Field)

	assert.Len(t, hub.all(), 1)
}

func TestRecordService_Create_MissingName(t *testing.T) {
	s, _, _ := newRecordService(t)

	_, err := s.Create(context.Background(), owner, "ws1", common.CollectionIngredients,
		map[string]any{"unit": "kg"})
	assert.ErrorIs(t, err, common.ErrMissingField)
}

func TestRecordService_Create_SettingsHaveNoNameRule(t *testing.T) {
	s, _, _ := newRecordService(t)

	_, err := s.Create(context.Background(), owner, "ws1", common.CollectionSettings,
		map[string]any{"overhead_percent": 20.0, "currency": "INR"})
	assert.NoError(t, err)
}

func TestRecordService_Create_UnknownCollection(t *testing.T) {
	s, _, _ := newRecordService(t)

	_, err := s.Create(context.Background(), owner, "ws1", "gadgets", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordService_Update_CASConflict(t *testing.T) {
	s, _, hub := newRecordService(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "Besan"})
	require.NoError(t, err)

	_, err = s.Update(ctx, owner, "ws1", common.CollectionIngredients, rec.ID,
		map[string]any{"name": "Besan", "unit": "kg"}, rec.Version)
	require.NoError(t, err)

	// stale expected version
	_, err = s.Update(ctx, owner, "ws1", common.CollectionIngredients, rec.ID,
		map[string]any{"name": "Besan", "unit": "g"}, rec.Version)
	var conflict *common.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.EqualValues(t, rec.Version, conflict.Expected)
	assert.EqualValues(t, rec.Version+1, conflict.Actual)

	// only the successful update published
	assert.Len(t, hub.all(), 2)
}

func TestRecordService_Update_KeepOwnNameAndAudit(t *testing.T) {
	s, _, _ := newRecordService(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients,
		map[string]any{"name": "Cashew", "price_per_unit": 900.0})
	require.NoError(t, err)

	// same name, new price: the exclude-id filter must not flag itself
	updated, err := s.Update(ctx, owner, "ws1", common.CollectionIngredients, rec.ID,
		map[string]any{"name": "Cashew", "price_per_unit": 950.0}, rec.Version)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)

	audit, err := s.ListAudit(ctx, "ws1", 10)
	require.NoError(t, err)
	require.Len(t, audit, 2)
	assert.Equal(t, "update", audit[0].Action)
	assert.Equal(t, 900.0, audit[0].Before["price_per_unit"])
	assert.Equal(t, 950.0, audit[0].After["price_per_unit"])
}

func TestRecordService_Delete_IngredientInUse(t *testing.T) {
	s, _, hub := newRecordService(t)
	ctx := context.Background()

	ing, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "Jaggery"})
	require.NoError(t, err)
	_, err = s.Create(ctx, owner, "ws1", common.CollectionRecipes, map[string]any{
		"name":  "Chikki",
		"links": []any{map[string]any{"ingredient_id": ing.ID, "quantity": 2.0}},
	})
	require.NoError(t, err)

	err = s.Delete(ctx, owner, "ws1", common.CollectionIngredients, ing.ID)
	assert.ErrorIs(t, err, common.ErrForeignKey)

	// still present
	_, err = s.Get(ctx, "ws1", common.CollectionIngredients, ing.ID)
	assert.NoError(t, err)
	assert.Len(t, hub.all(), 2)
}

func TestRecordService_Delete_PublishesOldRecord(t *testing.T) {
	s, _, hub := newRecordService(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, "ws1", common.CollectionStaff,
		map[string]any{"name": "Ravi", "role": "cook", "monthly_salary": 18000.0})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, owner, "ws1", common.CollectionStaff, rec.ID))

	events := hub.all()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventDelete, events[1].Type)
	require.NotNil(t, events[1].Old)
	assert.Equal(t, rec.ID, events[1].Old.ID)

	audit, err := s.ListAudit(ctx, "ws1", 10)
	require.NoError(t, err)
	assert.Equal(t, "delete", audit[0].Action)
	assert.Equal(t, "Ravi", audit[0].Before["name"])
	assert.Nil(t, audit[0].After)
}

func TestRecordService_List_Filters(t *testing.T) {
	s, _, _ := newRecordService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "Milk"})
	require.NoError(t, err)
	_, err = s.Create(ctx, owner, "ws1", common.CollectionIngredients, map[string]any{"name": "Khoya"})
	require.NoError(t, err)

	found, err := s.List(ctx, "ws1", common.CollectionIngredients, records.Filter{NameFold: "MILK"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = s.List(ctx, "ws1", common.CollectionIngredients, records.Filter{NameFold: "MILK", ExcludeID: a.ID})
	require.NoError(t, err)
	assert.Len(t, found, 0)
}
