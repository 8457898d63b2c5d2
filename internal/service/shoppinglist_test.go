package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/models"
	"recipebook/internal/testhelpers"
)

func TestAggregate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "chef")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	egg := testhelpers.CreateIngredient(t, db, "egg", "pcs")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	pancakes := models.Recipe{
		AuthorID:    author.ID,
		Name:        "Pancakes",
		CookingTime: 15,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: egg.ID, Amount: 2},
		},
	}
	require.NoError(t, db.Create(&pancakes).Error)

	crepes := models.Recipe{
		AuthorID:    author.ID,
		Name:        "Crepes",
		CookingTime: 20,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: milk.ID, Amount: 1},
		},
	}
	require.NoError(t, db.Create(&crepes).Error)

	// A recipe outside the cart must not contribute.
	bread := models.Recipe{
		AuthorID:    author.ID,
		Name:        "Bread",
		CookingTime: 120,
		Ingredients: []models.RecipeIngredient{{IngredientID: flour.ID, Amount: 500}},
	}
	require.NoError(t, db.Create(&bread).Error)

	require.NoError(t, db.Create(&models.ShoppingListEntry{UserID: shopper.ID, RecipeID: pancakes.ID}).Error)
	require.NoError(t, db.Create(&models.ShoppingListEntry{UserID: shopper.ID, RecipeID: crepes.ID}).Error)

	totals, err := svc.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []IngredientTotal{
		{Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "milk", MeasurementUnit: "ml", Amount: 1},
	}, totals)

	// Another user's cart is empty.
	totals, err = svc.Aggregate(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestAggregateKeepsUnitsApart(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "chef")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	sugarG := testhelpers.CreateIngredient(t, db, "sugar", "g")
	sugarTbsp := testhelpers.CreateIngredient(t, db, "sugar", "tbsp")

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        "Syrup",
		CookingTime: 5,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: sugarG.ID, Amount: 100},
			{IngredientID: sugarTbsp.ID, Amount: 3},
		},
	}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.ShoppingListEntry{UserID: shopper.ID, RecipeID: recipe.ID}).Error)

	totals, err := svc.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	// Same name, different unit: two separate lines, never summed.
	assert.Equal(t, []IngredientTotal{
		{Name: "sugar", MeasurementUnit: "g", Amount: 100},
		{Name: "sugar", MeasurementUnit: "tbsp", Amount: 3},
	}, totals)
}

func TestRenderText(t *testing.T) {
	totals := []IngredientTotal{
		{Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
	}
	assert.Equal(t, "Shopping list:\negg (pcs) - 2\nflour (g) - 300\n", RenderText(totals))
	assert.Equal(t, "", RenderText(nil))
}
