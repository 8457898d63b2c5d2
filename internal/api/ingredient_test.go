package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/testhelpers"
)

func TestIngredientSearch(t *testing.T) {
	router, db := setupTest(t)
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	testhelpers.CreateIngredient(t, db, "Sunflower oil", "ml")
	testhelpers.CreateIngredient(t, db, "salt", "g")

	list := func(path string) []IngredientResponse {
		w := doJSON(t, router, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var out struct {
			Ingredients []IngredientResponse `json:"ingredients"`
		}
		decodeJSON(t, w, &out)
		return out.Ingredients
	}

	all := list("/api/ingredients")
	assert.Len(t, all, 3)

	// Substring match, case-insensitive, anywhere in the name.
	matched := list("/api/ingredients?name=FLOUR")
	require.Len(t, matched, 2)
	assert.Equal(t, "Sunflower oil", matched[0].Name)
	assert.Equal(t, "flour", matched[1].Name)

	assert.Empty(t, list("/api/ingredients?name=pepper"))

	w := doJSON(t, router, http.MethodGet, "/api/ingredients/"+flour.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got IngredientResponse
	decodeJSON(t, w, &got)
	assert.Equal(t, "flour", got.Name)
	assert.Equal(t, "g", got.MeasurementUnit)

	w = doJSON(t, router, http.MethodGet, "/api/ingredients/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
