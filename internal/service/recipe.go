package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipebook/internal/models"
)

// RecipeService owns recipe reads, writes and list filtering.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// IngredientAmountInput is one submitted ingredient line.
type IngredientAmountInput struct {
	IngredientID uuid.UUID
	Amount       int64
}

// RecipeInput is the payload for recipe create and update. Image may be a
// plain URL or an inline "data:image/...;base64," payload; inline payloads
// are pushed through the image store and replaced with the returned URL.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmountInput
}

// RecipeFilter narrows the recipe list. Requester is uuid.Nil for
// anonymous callers. Nil pointer fields mean "no restriction"; filters
// compose conjunctively.
type RecipeFilter struct {
	Requester      uuid.UUID
	AuthorID       *uuid.UUID
	TagSlugs       []string
	Favorited      *bool
	InShoppingCart *bool
	Limit          int
	Offset         int
}

func (s *RecipeService) validate(ctx context.Context, in RecipeInput) error {
	if in.CookingTime < 1 {
		return fmt.Errorf("%w: cooking time must be at least 1 minute", ErrValidation)
	}
	if len(in.Ingredients) == 0 {
		return fmt.Errorf("%w: recipe must have at least one ingredient", ErrValidation)
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	ingredientIDs := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if _, dup := seen[line.IngredientID]; dup {
			return fmt.Errorf("%w: duplicate ingredient %s", ErrValidation, line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
		ingredientIDs = append(ingredientIDs, line.IngredientID)
		if line.Amount < 1 {
			return fmt.Errorf("%w: ingredient amount must be at least 1", ErrValidation)
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ingredientIDs)) {
		return fmt.Errorf("%w: unknown ingredient reference", ErrValidation)
	}

	if len(in.TagIDs) > 0 {
		tagIDs := dedupeIDs(in.TagIDs)
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).
			Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(tagIDs)) {
			return fmt.Errorf("%w: unknown tag reference", ErrValidation)
		}
	}

	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *RecipeService) resolveImage(ctx context.Context, image string) (string, error) {
	data, contentType, ok := DecodeInlineImage(image)
	if !ok || s.images == nil {
		return image, nil
	}
	return s.images.Save(ctx, data, contentType)
}

// Create validates the payload and persists the recipe together with its
// tag set and ingredient lines in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	imageURL, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		ImageURL:    imageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	for _, line := range in.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	for _, id := range dedupeIDs(in.TagIDs) {
		recipe.Tags = append(recipe.Tags, models.Tag{ID: id})
	}

	// Omit Tags.* so only the join rows are written; tag existence was
	// checked during validation.
	if err := s.db.WithContext(ctx).Omit("Tags.*").Create(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: duplicate ingredient line", ErrDuplicateEntry)
		}
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields and its whole tag and ingredient
// sets. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, requester, recipeID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return nil, err
	}
	if recipe.AuthorID != requester {
		return nil, ErrForbidden
	}

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	imageURL, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Updates(map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"image_url":    imageURL,
			"cooking_time": in.CookingTime,
		}).Error; err != nil {
			return err
		}

		// Full replace, not a merge: drop the old lines and tag links.
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		lines := make([]models.RecipeIngredient, 0, len(in.Ingredients))
		for _, line := range in.Ingredients {
			lines = append(lines, models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.IngredientID,
				Amount:       line.Amount,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		var tags []models.Tag
		if len(in.TagIDs) > 0 {
			if err := tx.Where("id IN ?", dedupeIDs(in.TagIDs)).Find(&tags).Error; err != nil {
				return err
			}
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Delete removes a recipe and everything hanging off it. Only the author
// may delete.
func (s *RecipeService) Delete(ctx context.Context, requester, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return err
	}
	if recipe.AuthorID != requester {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingListEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get returns a recipe with its author, tags and ingredient lines.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return nil, err
	}
	return &recipe, nil
}

// List applies the filter and returns recipes newest first. A recipe with
// several matching tags appears once. Anonymous requesters asking for
// favorite or cart restrictions get an empty result, not an error.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, error) {
	if (f.Favorited != nil || f.InShoppingCart != nil) && f.Requester == uuid.Nil {
		return []models.Recipe{}, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")

	if f.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *f.AuthorID)
	}

	if len(f.TagSlugs) > 0 {
		// IN-subquery keeps the result deduplicated without DISTINCT on
		// the outer select. Unknown slugs simply match nothing.
		sub := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("recipes.id IN (?)", sub)
	}

	if f.Favorited != nil {
		sub := s.db.Model(&models.Favorite{}).
			Select("recipe_id").Where("user_id = ?", f.Requester)
		if *f.Favorited {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}

	if f.InShoppingCart != nil {
		sub := s.db.Model(&models.ShoppingListEntry{}).
			Select("recipe_id").Where("user_id = ?", f.Requester)
		if *f.InShoppingCart {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recipes []models.Recipe
	if err := q.Order("recipes.created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ListByAuthor returns an author's recipes, newest first, optionally
// capped. Used by the subscriptions listing.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}
