package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/syncer"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// AddIngredient prompts for the ingredient fields and saves through the
// orchestrator, so debounce, offline queueing and retries all apply.
func (a *App) AddIngredient(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Ingredient name", os.Stdout)
	if err != nil {
		return err
	}
	unit, err := getSimpleText(a.reader, "Unit (kg, l, piece)", os.Stdout)
	if err != nil {
		return err
	}
	price, err := GetFloat(a.reader, "Price per unit", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	ing := models.Ingredient{Name: name, Unit: unit, PricePerUnit: price}
	out := <-a.syncer.Save(ctx, syncer.Request{
		Collection: common.CollectionIngredients,
		Action:     models.ActionCreate,
		Fields:     ing.Fields(),
	})
	return a.reportOutcome(out, "Ingredient saved.")
}

// EditIngredient lets the user change one ingredient, carrying the version
// read at selection time as the optimistic lock token.
func (a *App) EditIngredient(ctx context.Context) error {
	rec, err := a.pickByName(ctx, common.CollectionIngredients)
	if err != nil {
		return err
	}
	current := models.IngredientFromRecord(rec)

	price, err := GetFloat(a.reader, fmt.Sprintf("New price per %s (was %.2f)", current.Unit, current.PricePerUnit), os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	current.PricePerUnit = price

	out := <-a.syncer.Save(ctx, syncer.Request{
		Collection:      common.CollectionIngredients,
		Action:          models.ActionUpdate,
		TargetID:        rec.ID,
		Fields:          current.Fields(),
		ExpectedVersion: rec.Version,
	})
	return a.reportOutcome(out, "Ingredient updated.")
}

// DeleteIngredient removes an ingredient. The backend refuses when any
// recipe still references it.
func (a *App) DeleteIngredient(ctx context.Context) error {
	rec, err := a.pickByName(ctx, common.CollectionIngredients)
	if err != nil {
		return err
	}

	out := <-a.syncer.Save(ctx, syncer.Request{
		Collection: common.CollectionIngredients,
		Action:     models.ActionDelete,
		TargetID:   rec.ID,
	})
	return a.reportOutcome(out, "Ingredient deleted.")
}

// ListIngredients prints the collection sorted by name.
func (a *App) ListIngredients(ctx context.Context) error {
	recs, err := a.store.List(ctx, common.CollectionIngredients)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	items := make([]models.Ingredient, 0, len(recs))
	for _, r := range recs {
		items = append(items, models.IngredientFromRecord(r))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	if len(items) == 0 {
		printlnFn("No ingredients yet.")
		return nil
	}
	for _, it := range items {
		printlnFn(fmt.Sprintf("  %-20s %8.2f / %s", it.Name, it.PricePerUnit, it.Unit))
	}
	return nil
}

// pickByName prompts for a name and resolves it against the collection.
func (a *App) pickByName(ctx context.Context, collection string) (*models.Record, error) {
	name, err := getSimpleText(a.reader, "Name", os.Stdout)
	if err != nil {
		return nil, err
	}

	recs, err := a.store.List(ctx, collection)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return nil, err
	}
	for _, r := range recs {
		if strings.EqualFold(r.Name(), name) {
			return r, nil
		}
	}
	printlnFn("No record named", name)
	return nil, common.ErrNotFound
}

// reportOutcome prints the terminal message for one save outcome.
func (a *App) reportOutcome(out syncer.Outcome, success string) error {
	switch out.Result {
	case syncer.ResultSaved:
		printlnFn(success)
		return nil
	case syncer.ResultQueued:
		// the status reporter already told the user
		return nil
	case syncer.ResultSuperseded:
		return nil
	default:
		return out.Err
	}
}
