package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipebook/config"
	"recipebook/internal/testhelpers"
)

// setupTest builds the full /api router against a fresh in-memory
// database. Redis and the image store are left nil, so rate limiting and
// inline image upload stay out of the way.
func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	router := gin.New()
	SetupAPI(router, db, &config.Config{JWTSecret: "test-secret"}, nil, nil)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// registerAndLogin creates a user through the public endpoints and
// returns its id with a valid bearer token.
func registerAndLogin(t *testing.T, router *gin.Engine, username string) (uuid.UUID, string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var user UserResponse
	decodeJSON(t, w, &user)

	w = doJSON(t, router, http.MethodPost, "/api/auth/token/login", gin.H{
		"email":    username + "@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.AuthToken)

	return user.ID, resp.AuthToken
}
