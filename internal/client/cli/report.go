package cli

import (
	"context"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/costing"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// Report prints the costing report: per-recipe ingredient cost, overhead
// uplift, cost per piece and margin.
func (a *App) Report(ctx context.Context) error {
	recipeRecs, err := a.store.List(ctx, common.CollectionRecipes)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}
	ingredientRecs, err := a.store.List(ctx, common.CollectionIngredients)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	settings := models.Settings{}
	if settingsRecs, err := a.store.List(ctx, common.CollectionSettings); err == nil && len(settingsRecs) > 0 {
		settings = models.SettingsFromRecord(settingsRecs[0])
	}

	recipes := make([]models.Recipe, 0, len(recipeRecs))
	for _, r := range recipeRecs {
		recipes = append(recipes, models.RecipeFromRecord(r))
	}
	ingredients := make([]models.Ingredient, 0, len(ingredientRecs))
	for _, r := range ingredientRecs {
		ingredients = append(ingredients, models.IngredientFromRecord(r))
	}

	lines := costing.Report(recipes, ingredients, settings)
	if len(lines) == 0 {
		printlnFn("No recipes to price.")
		return nil
	}

	currency := settings.Currency
	if currency == "" {
		currency = "INR"
	}
	printlnFn(fmt.Sprintf("Costing report (overhead %.0f%%, %s):", settings.OverheadPercent, currency))
	for _, l := range lines {
		printlnFn(fmt.Sprintf("  %-20s batch %8.2f  piece %7.2f  sells %7.2f  margin %7.2f",
			l.Recipe, l.TotalCost, l.CostPerPiece, l.SellingPrice, l.MarginPerPiece))
		if l.MissingIngredients > 0 {
			printlnFn(fmt.Sprintf("    (%d ingredient reference(s) missing, cost incomplete)", l.MissingIngredients))
		}
	}
	return nil
}
