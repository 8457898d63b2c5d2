package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipebook/internal/models"
)

// InteractionService handles the two-state pairs: favorites, shopping-cart
// entries and follows. Add on a present pair fails with ErrDuplicateEntry,
// remove on an absent pair fails with ErrNotFound.
//
// duplicateNoop switches add operations to idempotent success instead of
// the duplicate error; the storage-level unique constraints stay in place
// either way, so concurrent double-adds can never produce two rows.
type InteractionService struct {
	db            *gorm.DB
	duplicateNoop bool
}

func NewInteractionService(db *gorm.DB, duplicateNoop bool) *InteractionService {
	return &InteractionService{db: db, duplicateNoop: duplicateNoop}
}

func (s *InteractionService) recipeExists(ctx context.Context, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return err
	}
	return nil
}

// translateCreate maps a unique-constraint violation on an add to the
// duplicate-entry error so races never leak a raw storage error.
func (s *InteractionService) translateCreate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if s.duplicateNoop {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, what)
	}
	return err
}

func (s *InteractionService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	return s.translateCreate(
		s.db.WithContext(ctx).Create(&fav).Error,
		"recipe already favorited",
	)
}

func (s *InteractionService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe is not in favorites", ErrNotFound)
	}
	return nil
}

func (s *InteractionService) AddToShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	entry := models.ShoppingListEntry{UserID: userID, RecipeID: recipeID}
	return s.translateCreate(
		s.db.WithContext(ctx).Create(&entry).Error,
		"recipe already in shopping cart",
	)
}

func (s *InteractionService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingListEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe is not in the shopping cart", ErrNotFound)
	}
	return nil
}

// Subscribe follows an author. Self-follow is rejected before any write.
func (s *InteractionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	var author models.User
	if err := s.db.WithContext(ctx).Select("id").First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, authorID)
		}
		return err
	}
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return s.translateCreate(
		s.db.WithContext(ctx).Create(&follow).Error,
		"already subscribed",
	)
}

func (s *InteractionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: not subscribed to this user", ErrNotFound)
	}
	return nil
}

// Subscriptions returns the authors the user follows, oldest follow first.
func (s *InteractionService) Subscriptions(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at ASC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// IsSubscribed reports whether user follows author.
func (s *InteractionService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FavoriteRecipeIDs returns the subset of ids the user has favorited.
func (s *InteractionService) FavoriteRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.pairSet(ctx, &models.Favorite{}, userID, recipeIDs)
}

// CartRecipeIDs returns the subset of ids in the user's shopping cart.
func (s *InteractionService) CartRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.pairSet(ctx, &models.ShoppingListEntry{}, userID, recipeIDs)
}

func (s *InteractionService) pairSet(ctx context.Context, model interface{}, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if userID == uuid.Nil || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
