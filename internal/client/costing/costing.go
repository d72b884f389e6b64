// Package costing computes the recipe cost report: ingredient cost per
// batch and per piece, overhead uplift and margin against the selling
// price. Pure calculations over the typed models, no I/O.
package costing

import (
	"sort"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
)

// Line is the report row for one recipe.
type Line struct {
	Recipe string
	// IngredientCost is the raw ingredient spend for one batch.
	IngredientCost float64
	// TotalCost adds the overhead percentage on top of the ingredient cost.
	TotalCost float64
	// CostPerPiece is TotalCost divided by the batch size, 0 when the batch
	// size is unset.
	CostPerPiece float64
	SellingPrice float64
	// MarginPerPiece is the selling price minus the cost per piece.
	MarginPerPiece float64
	// MissingIngredients counts links whose ingredient no longer exists;
	// their cost contribution is unknown and excluded.
	MissingIngredients int
}

// Report prices every recipe against the current ingredient list, applying
// the settings' overhead percentage. Rows come out sorted by recipe name.
func Report(recipes []models.Recipe, ingredients []models.Ingredient, settings models.Settings) []Line {
	prices := make(map[string]float64, len(ingredients))
	for _, ing := range ingredients {
		prices[ing.ID] = ing.PricePerUnit
	}

	lines := make([]Line, 0, len(recipes))
	for _, r := range recipes {
		line := Line{Recipe: r.Name, SellingPrice: r.SellingPrice}

		for _, link := range r.Links {
			price, ok := prices[link.IngredientID]
			if !ok {
				line.MissingIngredients++
				continue
			}
			line.IngredientCost += price * link.Quantity
		}

		line.TotalCost = line.IngredientCost * (1 + settings.OverheadPercent/100)
		if r.BatchSize > 0 {
			line.CostPerPiece = line.TotalCost / r.BatchSize
		}
		line.MarginPerPiece = r.SellingPrice - line.CostPerPiece

		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Recipe < lines[j].Recipe })
	return lines
}
