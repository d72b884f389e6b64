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

// AddRecipe prompts for a recipe and its ingredient links. Links reference
// ingredients by name here; the stored link carries the ingredient id. The
// link list is sent wholesale, the backend replaces it on every update.
func (a *App) AddRecipe(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Recipe name", os.Stdout)
	if err != nil {
		return err
	}
	batch, err := GetFloat(a.reader, "Batch size (pieces per batch)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	price, err := GetFloat(a.reader, "Selling price per piece", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	ingredients, err := a.store.List(ctx, common.CollectionIngredients)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}
	byName := make(map[string]*models.Record, len(ingredients))
	for _, r := range ingredients {
		byName[strings.ToLower(r.Name())] = r
	}

	var links []models.RecipeLink
	printlnFn("Enter ingredients as 'name quantity', empty line to finish:")
	for {
		line, err := getSimpleText(a.reader, "", os.Stdout)
		if err != nil || line == "" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			printlnFn("Expected: name quantity")
			continue
		}
		qtyText := parts[len(parts)-1]
		ingName := strings.ToLower(strings.Join(parts[:len(parts)-1], " "))

		rec, ok := byName[ingName]
		if !ok {
			printlnFn("No ingredient named", ingName)
			continue
		}
		var qty float64
		if _, err := fmt.Sscanf(qtyText, "%f", &qty); err != nil {
			printlnFn(qtyText, "is not a number")
			continue
		}
		links = append(links, models.RecipeLink{IngredientID: rec.ID, Quantity: qty})
	}

	recipe := models.Recipe{Name: name, BatchSize: batch, SellingPrice: price, Links: links}
	out := <-a.syncer.Save(ctx, syncer.Request{
		Collection: common.CollectionRecipes,
		Action:     models.ActionCreate,
		Fields:     recipe.Fields(),
	})
	return a.reportOutcome(out, "Recipe saved.")
}

// ListRecipes prints the collection sorted by name.
func (a *App) ListRecipes(ctx context.Context) error {
	recs, err := a.store.List(ctx, common.CollectionRecipes)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	items := make([]models.Recipe, 0, len(recs))
	for _, r := range recs {
		items = append(items, models.RecipeFromRecord(r))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	if len(items) == 0 {
		printlnFn("No recipes yet.")
		return nil
	}
	for _, it := range items {
		printlnFn(fmt.Sprintf("  %-20s batch %g, sells at %.2f, %d ingredient(s)",
			it.Name, it.BatchSize, it.SellingPrice, len(it.Links)))
	}
	return nil
}
