package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
)

func TestReport_PricesRecipeWithOverhead(t *testing.T) {
	ingredients := []models.Ingredient{
		{ID: "ing-besan", Name: "Besan", Unit: "kg", PricePerUnit: 90},
		{ID: "ing-ghee", Name: "Ghee", Unit: "kg", PricePerUnit: 560},
		{ID: "ing-sugar", Name: "Sugar", Unit: "kg", PricePerUnit: 42},
	}
	recipes := []models.Recipe{
		{
			Name: "Mysore Pak", BatchSize: 40, SellingPrice: 35,
			Links: []models.RecipeLink{
				{IngredientID: "ing-besan", Quantity: 1},
				{IngredientID: "ing-ghee", Quantity: 1.5},
				{IngredientID: "ing-sugar", Quantity: 2},
			},
		},
	}
	settings := models.Settings{OverheadPercent: 20, Currency: "INR"}

	lines := Report(recipes, ingredients, settings)
	require.Len(t, lines, 1)

	l := lines[0]
	// 90 + 840 + 84 = 1014 per batch
	assert.InDelta(t, 1014.0, l.IngredientCost, 0.001)
	assert.InDelta(t, 1216.8, l.TotalCost, 0.001)
	assert.InDelta(t, 30.42, l.CostPerPiece, 0.001)
	assert.InDelta(t, 35-30.42, l.MarginPerPiece, 0.001)
	assert.Zero(t, l.MissingIngredients)
}

func TestReport_MissingIngredientExcludedAndCounted(t *testing.T) {
	recipes := []models.Recipe{
		{
			Name: "Laddu", BatchSize: 10, SellingPrice: 20,
			Links: []models.RecipeLink{
				{IngredientID: "gone", Quantity: 3},
				{IngredientID: "ing-sugar", Quantity: 1},
			},
		},
	}
	ingredients := []models.Ingredient{{ID: "ing-sugar", PricePerUnit: 42}}

	lines := Report(recipes, ingredients, models.Settings{})
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].MissingIngredients)
	assert.InDelta(t, 42.0, lines[0].IngredientCost, 0.001)
}

func TestReport_ZeroBatchSizeHasNoPerPieceCost(t *testing.T) {
	lines := Report([]models.Recipe{{Name: "Draft", SellingPrice: 10}}, nil, models.Settings{OverheadPercent: 50})
	require.Len(t, lines, 1)
	assert.Zero(t, lines[0].CostPerPiece)
	assert.Equal(t, 10.0, lines[0].MarginPerPiece)
}

func TestReport_SortedByRecipeName(t *testing.T) {
	lines := Report([]models.Recipe{{Name: "Zebra"}, {Name: "Apple"}}, nil, models.Settings{})
	require.Len(t, lines, 2)
	assert.Equal(t, "Apple", lines[0].Recipe)
	assert.Equal(t, "Zebra", lines[1].Recipe)
}
