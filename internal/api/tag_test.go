package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/testhelpers"
)

func TestTagEndpoints(t *testing.T) {
	router, db := setupTest(t)
	dinner := testhelpers.CreateTag(t, db, "Dinner", "dinner")
	testhelpers.CreateTag(t, db, "Breakfast", "breakfast")

	w := doJSON(t, router, http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Tags []TagResponse `json:"tags"`
	}
	decodeJSON(t, w, &list)
	require.Len(t, list.Tags, 2)
	assert.Equal(t, "Breakfast", list.Tags[0].Name)
	assert.Equal(t, "Dinner", list.Tags[1].Name)

	w = doJSON(t, router, http.MethodGet, "/api/tags/"+dinner.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tag TagResponse
	decodeJSON(t, w, &tag)
	assert.Equal(t, "dinner", tag.Slug)

	w = doJSON(t, router, http.MethodGet, "/api/tags/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/tags/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
