package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/repositories"
	"github.com/AlexPyslar03/product-selector-backend/pkg/rabbitmq"
)

// RecipeService handles business logic related to recipes, including
// resolving product associations on create and update.
type RecipeService struct {
	recipeRepo  repositories.RecipeRepository
	productRepo repositories.ProductRepository
	mq          *rabbitmq.Client
}

// NewRecipeService creates a new RecipeService. mq may be nil, in which case
// no events are published.
func NewRecipeService(recipeRepo repositories.RecipeRepository, productRepo repositories.ProductRepository, mq *rabbitmq.Client) *RecipeService {
	return &RecipeService{
		recipeRepo:  recipeRepo,
		productRepo: productRepo,
		mq:          mq,
	}
}

// RecipeCreateInput carries the fields for creating a recipe.
type RecipeCreateInput struct {
	Name            string
	Description     string
	Vegan           bool
	DifficultyLevel models.DifficultyLevel
	Rating          *int64
	ImageURL        string
	ProductIDs      []uint
}

// RecipeUpdateInput carries the fields for updating a recipe. A nil
// ProductIDs keeps the current association set; a non-nil list (possibly
// empty) replaces it.
type RecipeUpdateInput struct {
	ID              uint
	Name            string
	Description     string
	Vegan           bool
	DifficultyLevel models.DifficultyLevel
	Rating          *int64
	ImageURL        string
	ProductIDs      *[]uint
}

// Create persists a new recipe. Product IDs are resolved against the store;
// unknown IDs are dropped, so the association ends up with exactly the
// products that exist.
func (s *RecipeService) Create(in RecipeCreateInput) (*models.Recipe, error) {
	if err := validateRecipeFields(in.Name, in.ImageURL, in.Rating); err != nil {
		return nil, err
	}
	if taken, err := s.recipeRepo.ExistsByName(in.Name); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("recipe name '%s' is taken: %w", in.Name, apperrors.ErrConflict)
	}

	products, err := s.resolveProducts(in.ProductIDs)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:            in.Name,
		Description:     in.Description,
		Vegan:           in.Vegan,
		DifficultyLevel: in.DifficultyLevel,
		Rating:          in.Rating,
		ImageURL:        in.ImageURL,
		Products:        products,
	}
	if err := s.recipeRepo.Create(recipe); err != nil {
		return nil, err
	}
	log.Printf("Recipe with ID %d created.", recipe.ID)

	s.publishEvent("created", recipe.ID)
	return recipe, nil
}

// GetAll retrieves all recipes.
func (s *RecipeService) GetAll() ([]models.Recipe, error) {
	return s.recipeRepo.GetAll()
}

// GetByID retrieves a single recipe by its ID.
func (s *RecipeService) GetByID(id uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(id)
}

// GetAllByIDs retrieves the recipes whose IDs exist among ids. It fails only
// when none of them exist.
func (s *RecipeService) GetAllByIDs(ids []uint) ([]models.Recipe, error) {
	recipes, err := s.recipeRepo.GetAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes for the given IDs: %w", apperrors.ErrNotFound)
	}
	return recipes, nil
}

// GetByProductID retrieves the recipes linked to a product.
func (s *RecipeService) GetByProductID(productID uint) ([]models.Recipe, error) {
	recipes, err := s.recipeRepo.GetByProductID(productID)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes for product with ID %d: %w", productID, apperrors.ErrNotFound)
	}
	return recipes, nil
}

// GetByProductIDs retrieves the recipes linked to any of the given products.
func (s *RecipeService) GetByProductIDs(productIDs []uint) ([]models.Recipe, error) {
	recipes, err := s.recipeRepo.GetByProductIDs(productIDs)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes for the given product IDs: %w", apperrors.ErrNotFound)
	}
	return recipes, nil
}

// Update replaces the scalar fields of an existing recipe and, when a
// product ID list is supplied, its association set.
func (s *RecipeService) Update(in RecipeUpdateInput) (*models.Recipe, error) {
	if err := validateRecipeFields(in.Name, in.ImageURL, in.Rating); err != nil {
		return nil, err
	}

	recipe, err := s.recipeRepo.GetByID(in.ID)
	if err != nil {
		return nil, err
	}

	recipe.Name = in.Name
	recipe.Description = in.Description
	recipe.Vegan = in.Vegan
	recipe.DifficultyLevel = in.DifficultyLevel
	recipe.Rating = in.Rating
	recipe.ImageURL = in.ImageURL
	if err := s.recipeRepo.Update(recipe); err != nil {
		return nil, err
	}

	if in.ProductIDs != nil {
		products, err := s.resolveProducts(*in.ProductIDs)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.ReplaceProducts(recipe, products); err != nil {
			return nil, err
		}
		recipe.Products = products
	}
	log.Printf("Recipe with ID %d updated.", recipe.ID)

	s.publishEvent("updated", recipe.ID)
	return recipe, nil
}

// Delete removes a recipe by ID. The existence check makes the not-found
// case deterministic.
func (s *RecipeService) Delete(id uint) error {
	exists, err := s.recipeRepo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("recipe with ID %d: %w", id, apperrors.ErrNotFound)
	}
	if err := s.recipeRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("Recipe with ID %d deleted.", id)

	s.publishEvent("deleted", id)
	return nil
}

// validateRecipeFields checks the constraints the schema cannot express.
func validateRecipeFields(name, imageURL string, rating *int64) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("recipe name and image URL must not be empty: %w", apperrors.ErrValidation)
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("recipe rating must be between 1 and 5: %w", apperrors.ErrValidation)
	}
	return nil
}

// resolveProducts loads the products for the given IDs. Unknown IDs are
// silently dropped; an empty list resolves to an empty association set.
func (s *RecipeService) resolveProducts(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	products, err := s.productRepo.GetAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *RecipeService) publishEvent(action string, id uint) {
	if s.mq == nil {
		return
	}
	if err := s.mq.PublishEntityEvent("recipe", action, id); err != nil {
		log.Printf("Warning: failed to publish recipe %s event for ID %d: %v", action, id, err)
	}
}
