package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipebook/internal/middleware"
	"recipebook/internal/models"
	"recipebook/internal/service"
)

type UserHandler struct {
	db           *gorm.DB
	authService  *service.AuthService
	interactions *service.InteractionService
	recipes      *service.RecipeService
	serializer   *serializer
}

func NewUserHandler(db *gorm.DB, authService *service.AuthService, interactions *service.InteractionService, recipes *service.RecipeService) *UserHandler {
	return &UserHandler{
		db:           db,
		authService:  authService,
		interactions: interactions,
		recipes:      recipes,
		serializer:   &serializer{interactions: interactions},
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=6"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := parseIntQuery(c, "offset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := h.db.WithContext(c.Request.Context()).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	requester := middleware.RequesterID(c)
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp, err := h.serializer.user(c.Request.Context(), requester, u)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		respondError(c, err)
		return
	}

	resp, err := h.serializer.user(c.Request.Context(), middleware.RequesterID(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	requester := middleware.RequesterID(c)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", requester).Error; err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.serializer.user(c.Request.Context(), requester, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	requester := middleware.RequesterID(c)

	if err := h.interactions.Subscribe(c.Request.Context(), requester, id); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, requester, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.interactions.Unsubscribe(c.Request.Context(), middleware.RequesterID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists followed authors together with their recipes in
// short form; recipes_limit caps the per-author recipe list.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	recipesLimit, err := parseIntQuery(c, "recipes_limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.RequesterID(c)
	authors, err := h.interactions.Subscriptions(c.Request.Context(), requester)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		resp, err := h.authorSubscription(c, requester, author, recipesLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

func (h *UserHandler) subscriptionResponse(c *gin.Context, requester uuid.UUID, authorID uuid.UUID) (SubscriptionResponse, error) {
	var author models.User
	if err := h.db.WithContext(c.Request.Context()).First(&author, "id = ?", authorID).Error; err != nil {
		return SubscriptionResponse{}, err
	}
	return h.authorSubscription(c, requester, author, 0)
}

func (h *UserHandler) authorSubscription(c *gin.Context, requester uuid.UUID, author models.User, recipesLimit int) (SubscriptionResponse, error) {
	userResp, err := h.serializer.user(c.Request.Context(), requester, author)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	recipes, total, err := h.recipes.ListByAuthor(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	return SubscriptionResponse{
		UserResponse: userResp,
		Recipes:      recipeShortResponses(recipes),
		RecipesCount: total,
	}, nil
}
