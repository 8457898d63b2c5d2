package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipebook/internal/models"
	"recipebook/internal/service"
)

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// IngredientAmountResponse is one ingredient line of a recipe; ID is the
// ingredient id, not the join row id.
type IngredientAmountResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int64     `json:"amount"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// RecipeShortResponse is the compact form used inside subscription
// listings and favorite/cart add responses.
type RecipeShortResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

type IngredientAmountRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int64     `json:"amount"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
}

func (r RecipeRequest) toInput() service.RecipeInput {
	in := service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
	}
	for _, line := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientAmountInput{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return in
}

func tagResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
	}
	return out
}

func ingredientAmountResponses(lines []models.RecipeIngredient) []IngredientAmountResponse {
	out := make([]IngredientAmountResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, IngredientAmountResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return out
}

func recipeShortResponses(recipes []models.Recipe) []RecipeShortResponse {
	out := make([]RecipeShortResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, RecipeShortResponse{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return out
}

// serializer renders entities with the per-requester computed flags.
type serializer struct {
	interactions *service.InteractionService
}

func (s *serializer) user(ctx context.Context, requester uuid.UUID, u models.User) (UserResponse, error) {
	subscribed, err := s.interactions.IsSubscribed(ctx, requester, u.ID)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}, nil
}

// recipes renders a batch, computing the favorite and cart flags with two
// queries instead of two per recipe.
func (s *serializer) recipes(ctx context.Context, requester uuid.UUID, recipes []models.Recipe) ([]RecipeResponse, error) {
	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}

	favorited, err := s.interactions.FavoriteRecipeIDs(ctx, requester, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := s.interactions.CartRecipeIDs(ctx, requester, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		author, err := s.user(ctx, requester, r.Author)
		if err != nil {
			return nil, err
		}
		out = append(out, RecipeResponse{
			ID:               r.ID,
			Tags:             tagResponses(r.Tags),
			Author:           author,
			Ingredients:      ingredientAmountResponses(r.Ingredients),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			CreatedAt:        r.CreatedAt,
		})
	}
	return out, nil
}

func (s *serializer) recipe(ctx context.Context, requester uuid.UUID, r *models.Recipe) (RecipeResponse, error) {
	out, err := s.recipes(ctx, requester, []models.Recipe{*r})
	if err != nil {
		return RecipeResponse{}, err
	}
	return out[0], nil
}

// respondError maps service sentinels to HTTP statuses. Anything
// unrecognized is logged and returned as a bare 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrDuplicateEntry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseBoolQuery reads an optional boolean query parameter. Accepts the
// strconv.ParseBool literals; anything else is a client error.
func parseBoolQuery(c *gin.Context, name string) (*bool, error) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean value %q for %s", raw, name)
	}
	return &v, nil
}

// parseIntQuery reads an optional non-negative integer query parameter.
func parseIntQuery(c *gin.Context, name string) (int, error) {
	raw, present := c.GetQuery(name)
	if !present {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid value %q for %s", raw, name)
	}
	return v, nil
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
