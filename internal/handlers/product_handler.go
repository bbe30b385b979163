package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AlexPyslar03/product-selector-backend/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Reads are public; mutations
// pass through the auth and role guards.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, editor fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/batch", h.HandleGetProductsBatch)
	productRoutes.Get("/recipe/batch", h.HandleGetByRecipeBatch)
	productRoutes.Get("/recipe/:id", h.HandleGetByRecipeID)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", auth, editor, h.HandleCreateProduct)
	productRoutes.Put("/", auth, editor, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, editor, h.HandleDeleteProduct)
}

// ProductCreateRequest represents the request body for creating a product.
type ProductCreateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	ImageURL  string `json:"image_url" validate:"required,max=255"`
	RecipeIDs []uint `json:"recipe_ids"`
}

// ProductUpdateRequest represents the request body for updating a product.
// recipe_ids omitted keeps the current association set; supplied (even
// empty) replaces it.
type ProductUpdateRequest struct {
	ID        uint    `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	ImageURL  string  `json:"image_url" validate:"required,max=255"`
	RecipeIDs *[]uint `json:"recipe_ids"`
}

// HandleCreateProduct creates a new product with its recipe associations.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product create body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	product, err := h.service.Create(services.ProductCreateInput{
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		RecipeIDs: req.RecipeIDs,
	})
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAll()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetByID(id)
	if err != nil {
		log.Printf("Error getting product by ID %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetProductsBatch retrieves the products whose IDs appear in the ids
// query parameter.
func (h *ProductHandler) HandleGetProductsBatch(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.service.GetAllByIDs(ids)
	if err != nil {
		log.Printf("Error getting products by IDs %v: %v", ids, err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetByRecipeID retrieves the products linked to a recipe.
func (h *ProductHandler) HandleGetByRecipeID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.service.GetByRecipeID(id)
	if err != nil {
		log.Printf("Error getting products by recipe ID %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetByRecipeBatch retrieves the products linked to any recipe in the
// ids query parameter.
func (h *ProductHandler) HandleGetByRecipeBatch(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.service.GetByRecipeIDs(ids)
	if err != nil {
		log.Printf("Error getting products by recipe IDs %v: %v", ids, err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	product, err := h.service.Update(services.ProductUpdateInput{
		ID:        req.ID,
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		RecipeIDs: req.RecipeIDs,
	})
	if err != nil {
		log.Printf("Error updating product %d: %v", req.ID, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
