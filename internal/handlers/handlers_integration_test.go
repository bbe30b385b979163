package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AlexPyslar03/product-selector-backend/internal/handlers"
	"github.com/AlexPyslar03/product-selector-backend/internal/middleware"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/repositories"
	"github.com/AlexPyslar03/product-selector-backend/internal/services"
)

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers, services and guards wired the way main does it.
func setupApp(t *testing.T) (*fiber.App, *services.UserService) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A named shared-cache database keeps all pooled connections on the
	// same in-memory store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Recipe{}))

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)

	userService := services.NewUserService(userRepo, nil)
	productService := services.NewProductService(productRepo, recipeRepo, nil)
	recipeService := services.NewRecipeService(recipeRepo, productRepo, nil)
	authService := services.NewAuthService(userService, jwtSecret)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	userHandler := handlers.NewUserHandler(userService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authGuard := middleware.AuthRequired(authService)
	editorGuard := middleware.RequireRoles(models.RoleModerator, models.RoleAdmin)
	adminGuard := middleware.RequireRoles(models.RoleAdmin)

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, authGuard, editorGuard)
	recipeHandler.RegisterRoutes(apiV1, authGuard, editorGuard)
	userHandler.RegisterRoutes(apiV1, authGuard, adminGuard)

	return app, userService
}

// seedAdmin creates an admin account directly through the user service.
func seedAdmin(t *testing.T, userService *services.UserService) *models.User {
	t.Helper()
	admin, err := userService.Create(services.UserCreateInput{
		Username:  "adminuser",
		Email:     "admin@example.com",
		Password:  "password123",
		BirthDate: time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC),
		Role:      models.RoleAdmin,
	})
	require.NoError(t, err)
	return admin
}

// doRequest performs a JSON request against the test app.
func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody decodes the response body into target.
func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

// signIn logs a user in and returns their token.
func signIn(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func TestAuthSignUpAndSignIn(t *testing.T) {
	app, _ := setupApp(t)

	signUp := map[string]string{
		"username":   "firstuser",
		"email":      "first@example.com",
		"password":   "password123",
		"birth_date": "1990-01-01",
	}

	// Sign-up issues a token.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-up", signUp, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["token"])

	// Reusing the username is a conflict, and the original account still
	// signs in.
	signUp["email"] = "other@example.com"
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-up", signUp, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	signIn(t, app, "firstuser", "password123")

	// Wrong password: 401 and no token in the body.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"username": "firstuser",
		"password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	assert.Empty(t, errBody["token"])
}

func TestProductCRUD(t *testing.T) {
	app, userService := setupApp(t)
	seedAdmin(t, userService)
	token := signIn(t, app, "adminuser", "password123")

	// Create with an empty recipe list.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":       "Milk",
		"image_url":  "http://x/img.jpg",
		"recipe_ids": []uint{},
	}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Milk", created.Name)
	assert.NotNil(t, created.Recipes)
	assert.Empty(t, created.Recipes)

	// Read back by ID.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	// Missing IDs are 404.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Batch returns the existing subset only.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/batch?ids=%d,9999", created.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var batch []models.Product
	decodeBody(t, resp, &batch)
	assert.Len(t, batch, 1)
	assert.Equal(t, created.ID, batch[0].ID)

	// Batch with no existing IDs is 404.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/batch?ids=9998,9999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Update the scalar fields.
	resp = doRequest(t, app, http.MethodPut, "/api/v1/products", map[string]interface{}{
		"id":        created.ID,
		"name":      "Whole Milk",
		"image_url": "http://x/img.jpg",
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Whole Milk", updated.Name)

	// Update of a missing ID is 404 and changes nothing.
	resp = doRequest(t, app, http.MethodPut, "/api/v1/products", map[string]interface{}{
		"id":        9999,
		"name":      "Ghost",
		"image_url": "http://x/ghost.jpg",
	}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "Whole Milk", fetched.Name)

	// Delete, then the ID is gone and a second delete is 404.
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecipeProductAssociation(t *testing.T) {
	app, userService := setupApp(t)
	seedAdmin(t, userService)
	token := signIn(t, app, "adminuser", "password123")

	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":      "Milk",
		"image_url": "http://x/img.jpg",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var milk models.Product
	decodeBody(t, resp, &milk)

	// Unknown product IDs in the list are dropped silently.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipes", map[string]interface{}{
		"name":             "Cake",
		"description":      "A very tasty cake",
		"vegan":            true,
		"difficulty_level": "EASY",
		"image_url":        "http://x/cake.jpg",
		"product_ids":      []uint{milk.ID, 9999},
	}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var cake models.Recipe
	decodeBody(t, resp, &cake)
	assert.NotZero(t, cake.ID)
	assert.True(t, cake.Vegan)
	assert.Equal(t, models.DifficultyEasy, cake.DifficultyLevel)
	require.Len(t, cake.Products, 1)
	assert.Equal(t, milk.ID, cake.Products[0].ID)

	// The association is visible from both sides.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/recipe/%d", cake.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var linkedProducts []models.Product
	decodeBody(t, resp, &linkedProducts)
	require.Len(t, linkedProducts, 1)
	assert.Equal(t, milk.ID, linkedProducts[0].ID)

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/recipes/product/%d", milk.ID), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var linkedRecipes []models.Recipe
	decodeBody(t, resp, &linkedRecipes)
	require.Len(t, linkedRecipes, 1)
	assert.Equal(t, cake.ID, linkedRecipes[0].ID)

	// A recipe with no products yields 404 on the association lookup.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/recipe/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Replacing the association set with an empty list clears it.
	empty := []uint{}
	resp = doRequest(t, app, http.MethodPut, "/api/v1/recipes", map[string]interface{}{
		"id":               cake.ID,
		"name":             "Cake",
		"description":      "A very tasty cake",
		"vegan":            true,
		"difficulty_level": "EASY",
		"image_url":        "http://x/cake.jpg",
		"product_ids":      empty,
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/recipe/%d", cake.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserAdminSurface(t *testing.T) {
	app, userService := setupApp(t)
	admin := seedAdmin(t, userService)
	adminToken := signIn(t, app, "adminuser", "password123")

	// No token: 401.
	resp := doRequest(t, app, http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A regular user's token: 403.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"username":   "plainuser",
		"email":      "plain@example.com",
		"password":   "password123",
		"birth_date": "1995-03-20",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	userToken := signIn(t, app, "plainuser", "password123")
	resp = doRequest(t, app, http.MethodGet, "/api/v1/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin lists users; password hashes never appear in the payload.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/users", nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rawUsers []map[string]interface{}
	decodeBody(t, resp, &rawUsers)
	assert.Len(t, rawUsers, 2)
	for _, u := range rawUsers {
		_, hasPassword := u["password"]
		assert.False(t, hasPassword)
	}

	// Admin creates a moderator.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users", map[string]string{
		"username":   "moderator1",
		"email":      "mod@example.com",
		"password":   "password123",
		"birth_date": "1992-07-01",
		"role":       "MODERATOR",
	}, adminToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var moderator models.User
	decodeBody(t, resp, &moderator)
	assert.Equal(t, models.RoleModerator, moderator.Role)

	// The moderator may mutate products.
	modToken := signIn(t, app, "moderator1", "password123")
	resp = doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":      "Sugar",
		"image_url": "http://x/sugar.jpg",
	}, modToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Batch lookup returns the existing subset.
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/users/batch?ids=%d,9999", admin.ID), nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var batch []models.User
	decodeBody(t, resp, &batch)
	assert.Len(t, batch, 1)

	// Deleting a missing user is 404; deleting a real one sticks.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/users/9999", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", moderator.ID), nil, adminToken)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", moderator.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationFailures(t *testing.T) {
	app, userService := setupApp(t)
	seedAdmin(t, userService)
	token := signIn(t, app, "adminuser", "password123")

	// Product name below the minimum length.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":      "M",
		"image_url": "http://x/img.jpg",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Recipe description below the minimum length.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipes", map[string]interface{}{
		"name":             "Cake",
		"description":      "short",
		"difficulty_level": "EASY",
		"image_url":        "http://x/cake.jpg",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown difficulty level.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipes", map[string]interface{}{
		"name":             "Cake",
		"description":      "A very tasty cake",
		"difficulty_level": "IMPOSSIBLE",
		"image_url":        "http://x/cake.jpg",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Rating outside 1-5.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipes", map[string]interface{}{
		"name":             "Cake",
		"description":      "A very tasty cake",
		"difficulty_level": "EASY",
		"rating":           9,
		"image_url":        "http://x/cake.jpg",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed ID path parameter.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/notanumber", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed ids query.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/products/batch?ids=1,abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed birth date on sign-up.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"username":   "brokenuser",
		"email":      "broken@example.com",
		"password":   "password123",
		"birth_date": "01.01.1990",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
