package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipebook/internal/models"
	"recipebook/internal/testhelpers"
)

func seedRecipe(t *testing.T, db *gorm.DB, author models.User, name string) models.Recipe {
	t.Helper()
	ingredient := testhelpers.CreateIngredient(t, db, name+" base", "g")
	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		CookingTime: 10,
		Ingredients: []models.RecipeIngredient{{IngredientID: ingredient.ID, Amount: 100}},
	}
	require.NoError(t, db.Create(&recipe).Error)
	return recipe
}

func TestFavoriteLifecycle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db, false)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	recipe := seedRecipe(t, db, author, "Pancakes")

	require.NoError(t, svc.AddFavorite(ctx, fan.ID, recipe.ID))
	assert.ErrorIs(t, svc.AddFavorite(ctx, fan.ID, recipe.ID), ErrDuplicateEntry)

	set, err := svc.FavoriteRecipeIDs(ctx, fan.ID, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.True(t, set[recipe.ID])

	require.NoError(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID), ErrNotFound)

	assert.ErrorIs(t, svc.AddFavorite(ctx, fan.ID, uuid.New()), ErrNotFound)
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, fan.ID, uuid.New()), ErrNotFound)
}

func TestShoppingCartLifecycle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db, false)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "chef")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	recipe := seedRecipe(t, db, author, "Stew")

	require.NoError(t, svc.AddToShoppingCart(ctx, shopper.ID, recipe.ID))
	assert.ErrorIs(t, svc.AddToShoppingCart(ctx, shopper.ID, recipe.ID), ErrDuplicateEntry)

	set, err := svc.CartRecipeIDs(ctx, shopper.ID, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.True(t, set[recipe.ID])

	require.NoError(t, svc.RemoveFromShoppingCart(ctx, shopper.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFromShoppingCart(ctx, shopper.ID, recipe.ID), ErrNotFound)

	assert.ErrorIs(t, svc.AddToShoppingCart(ctx, shopper.ID, uuid.New()), ErrNotFound)
}

func TestDuplicateAddNoop(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db, true)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	recipe := seedRecipe(t, db, author, "Pancakes")

	require.NoError(t, svc.AddFavorite(ctx, fan.ID, recipe.ID))
	require.NoError(t, svc.AddFavorite(ctx, fan.ID, recipe.ID))

	// Idempotent success still means exactly one row.
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", fan.ID, recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Removal semantics are unchanged by the noop mode.
	require.NoError(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID), ErrNotFound)
}

func TestSubscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db, false)
	ctx := context.Background()

	fan := testhelpers.CreateUser(t, db, "fan")
	chef := testhelpers.CreateUser(t, db, "chef")

	assert.ErrorIs(t, svc.Subscribe(ctx, fan.ID, fan.ID), ErrSelfFollow)
	assert.ErrorIs(t, svc.Subscribe(ctx, fan.ID, uuid.New()), ErrNotFound)

	require.NoError(t, svc.Subscribe(ctx, fan.ID, chef.ID))
	assert.ErrorIs(t, svc.Subscribe(ctx, fan.ID, chef.ID), ErrDuplicateEntry)

	subscribed, err := svc.IsSubscribed(ctx, fan.ID, chef.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	// Anonymous requesters are never subscribed.
	subscribed, err = svc.IsSubscribed(ctx, uuid.Nil, chef.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	require.NoError(t, svc.Unsubscribe(ctx, fan.ID, chef.ID))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, fan.ID, chef.ID), ErrNotFound)
}

func TestSubscriptionsOrder(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db, false)
	ctx := context.Background()

	fan := testhelpers.CreateUser(t, db, "fan")
	first := testhelpers.CreateUser(t, db, "first")
	second := testhelpers.CreateUser(t, db, "second")

	require.NoError(t, svc.Subscribe(ctx, fan.ID, first.ID))
	require.NoError(t, svc.Subscribe(ctx, fan.ID, second.ID))

	// Pin follow times so the oldest-first ordering is deterministic.
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", fan.ID, first.ID).
		Update("created_at", base).Error)
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", fan.ID, second.ID).
		Update("created_at", base.Add(time.Minute)).Error)

	authors, err := svc.Subscriptions(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "first", authors[0].Username)
	assert.Equal(t, "second", authors[1].Username)

	authors, err = svc.Subscriptions(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, authors)
}
