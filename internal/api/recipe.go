package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipebook/internal/middleware"
	"recipebook/internal/service"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	interactions  *service.InteractionService
	shoppingList  *service.ShoppingListService
	authService   *service.AuthService
	createLimiter *middleware.RateLimiter
	serializer    *serializer
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	interactions *service.InteractionService,
	shoppingList *service.ShoppingListService,
	authService *service.AuthService,
	createLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		interactions:  interactions,
		shoppingList:  shoppingList,
		authService:   authService,
		createLimiter: createLimiter,
		serializer:    &serializer{interactions: interactions},
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)

		create := []gin.HandlerFunc{auth}
		if h.createLimiter != nil {
			create = append(create, h.createLimiter.Middleware())
		}
		recipes.POST("", append(create, h.CreateRecipe)...)

		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)

		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromShoppingCart)
	}
}

// ListRecipes narrows the recipe set by author, tag slugs, favorite and
// cart status. Bad boolean literals are client errors; unknown tag slugs
// just match nothing.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{Requester: middleware.RequesterID(c)}

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &id
	}

	// Both tags=a&tags=b and tags=a,b are accepted.
	for _, raw := range c.QueryArray("tags") {
		for _, slug := range strings.Split(raw, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				filter.TagSlugs = append(filter.TagSlugs, slug)
			}
		}
	}

	var err error
	if filter.Favorited, err = parseBoolQuery(c, "is_favorited"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.InShoppingCart, err = parseBoolQuery(c, "is_in_shopping_cart"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Limit, err = parseIntQuery(c, "limit"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Offset, err = parseIntQuery(c, "offset"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipes, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.serializer.recipes(c.Request.Context(), filter.Requester, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.serializer.recipe(c.Request.Context(), middleware.RequesterID(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.RequesterID(c)
	recipe, err := h.recipeService.Create(c.Request.Context(), requester, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.serializer.recipe(c.Request.Context(), requester, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": out})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.RequesterID(c)
	recipe, err := h.recipeService.Update(c.Request.Context(), requester, id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.serializer.recipe(c.Request.Context(), requester, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": out})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), middleware.RequesterID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pairAction runs one favorite/cart transition and renders the short
// recipe form on successful add.
func (h *RecipeHandler) pairAction(c *gin.Context, action func(requester, recipeID uuid.UUID) error, respondRecipe bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := action(middleware.RequesterID(c), id); err != nil {
		respondError(c, err)
		return
	}

	if !respondRecipe {
		c.Status(http.StatusNoContent)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.pairAction(c, func(requester, recipeID uuid.UUID) error {
		return h.interactions.AddFavorite(c.Request.Context(), requester, recipeID)
	}, true)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.pairAction(c, func(requester, recipeID uuid.UUID) error {
		return h.interactions.RemoveFavorite(c.Request.Context(), requester, recipeID)
	}, false)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.pairAction(c, func(requester, recipeID uuid.UUID) error {
		return h.interactions.AddToShoppingCart(c.Request.Context(), requester, recipeID)
	}, true)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.pairAction(c, func(requester, recipeID uuid.UUID) error {
		return h.interactions.RemoveFromShoppingCart(c.Request.Context(), requester, recipeID)
	}, false)
}

// DownloadShoppingCart renders the consolidated ingredient list as a
// plain-text attachment. An empty cart downloads as empty content.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	totals, err := h.shoppingList.Aggregate(c.Request.Context(), middleware.RequesterID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderText(totals)))
}
