package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"recipebook/internal/models"
)

type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

// ListIngredients supports a single filter: case-insensitive substring
// match on name.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Order("name ASC")

	if name := c.Query("name"); name != "" {
		like := "%" + strings.ToLower(name) + "%"
		q = q.Where("LOWER(name) LIKE ?", like)
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		respondError(c, err)
		return
	}

	out := make([]IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit})
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": out})
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var ingredient models.Ingredient
	if err := h.db.WithContext(c.Request.Context()).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	})
}
