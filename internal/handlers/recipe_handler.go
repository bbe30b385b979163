package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/services"
)

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	service  *services.RecipeService
	validate *validator.Validate
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the recipe routes. Reads are public; mutations
// pass through the auth and role guards.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, editor fiber.Handler) {
	recipeRoutes := router.Group("/recipes")
	recipeRoutes.Get("/", h.HandleGetRecipes)
	recipeRoutes.Get("/batch", h.HandleGetRecipesBatch)
	recipeRoutes.Get("/product/batch", h.HandleGetByProductBatch)
	recipeRoutes.Get("/product/:id", h.HandleGetByProductID)
	recipeRoutes.Get("/:id", h.HandleGetRecipeByID)
	recipeRoutes.Post("/", auth, editor, h.HandleCreateRecipe)
	recipeRoutes.Put("/", auth, editor, h.HandleUpdateRecipe)
	recipeRoutes.Delete("/:id", auth, editor, h.HandleDeleteRecipe)
}

// RecipeCreateRequest represents the request body for creating a recipe.
type RecipeCreateRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Description     string `json:"description" validate:"required,min=10,max=500"`
	Vegan           bool   `json:"vegan"`
	DifficultyLevel string `json:"difficulty_level" validate:"required,oneof=EASY MEDIUM HARD"`
	Rating          *int64 `json:"rating" validate:"omitempty,min=1,max=5"`
	ImageURL        string `json:"image_url" validate:"required,max=255"`
	ProductIDs      []uint `json:"product_ids"`
}

// RecipeUpdateRequest represents the request body for updating a recipe.
// product_ids omitted keeps the current association set; supplied (even
// empty) replaces it.
type RecipeUpdateRequest struct {
	ID              uint    `json:"id" validate:"required"`
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Description     string  `json:"description" validate:"required,min=10,max=500"`
	Vegan           bool    `json:"vegan"`
	DifficultyLevel string  `json:"difficulty_level" validate:"required,oneof=EASY MEDIUM HARD"`
	Rating          *int64  `json:"rating" validate:"omitempty,min=1,max=5"`
	ImageURL        string  `json:"image_url" validate:"required,max=255"`
	ProductIDs      *[]uint `json:"product_ids"`
}

// HandleCreateRecipe creates a new recipe with its product associations.
func (h *RecipeHandler) HandleCreateRecipe(c *fiber.Ctx) error {
	var req RecipeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing recipe create body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	recipe, err := h.service.Create(services.RecipeCreateInput{
		Name:            req.Name,
		Description:     req.Description,
		Vegan:           req.Vegan,
		DifficultyLevel: models.DifficultyLevel(req.DifficultyLevel),
		Rating:          req.Rating,
		ImageURL:        req.ImageURL,
		ProductIDs:      req.ProductIDs,
	})
	if err != nil {
		log.Printf("Error creating recipe: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleGetRecipes retrieves all recipes.
func (h *RecipeHandler) HandleGetRecipes(c *fiber.Ctx) error {
	recipes, err := h.service.GetAll()
	if err != nil {
		log.Printf("Error getting all recipes: %v", err)
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleGetRecipeByID retrieves a single recipe by its ID.
func (h *RecipeHandler) HandleGetRecipeByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	recipe, err := h.service.GetByID(id)
	if err != nil {
		log.Printf("Error getting recipe by ID %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleGetRecipesBatch retrieves the recipes whose IDs appear in the ids
// query parameter.
func (h *RecipeHandler) HandleGetRecipesBatch(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return respondError(c, err)
	}
	recipes, err := h.service.GetAllByIDs(ids)
	if err != nil {
		log.Printf("Error getting recipes by IDs %v: %v", ids, err)
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleGetByProductID retrieves the recipes linked to a product.
func (h *RecipeHandler) HandleGetByProductID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	recipes, err := h.service.GetByProductID(id)
	if err != nil {
		log.Printf("Error getting recipes by product ID %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleGetByProductBatch retrieves the recipes linked to any product in the
// ids query parameter.
func (h *RecipeHandler) HandleGetByProductBatch(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return respondError(c, err)
	}
	recipes, err := h.service.GetByProductIDs(ids)
	if err != nil {
		log.Printf("Error getting recipes by product IDs %v: %v", ids, err)
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleUpdateRecipe updates an existing recipe.
func (h *RecipeHandler) HandleUpdateRecipe(c *fiber.Ctx) error {
	var req RecipeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing recipe update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	recipe, err := h.service.Update(services.RecipeUpdateInput{
		ID:              req.ID,
		Name:            req.Name,
		Description:     req.Description,
		Vegan:           req.Vegan,
		DifficultyLevel: models.DifficultyLevel(req.DifficultyLevel),
		Rating:          req.Rating,
		ImageURL:        req.ImageURL,
		ProductIDs:      req.ProductIDs,
	})
	if err != nil {
		log.Printf("Error updating recipe %d: %v", req.ID, err)
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleDeleteRecipe deletes a recipe by its ID.
func (h *RecipeHandler) HandleDeleteRecipe(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		log.Printf("Error deleting recipe %d: %v", id, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
