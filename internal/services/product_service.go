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

// ProductService handles business logic related to products, including
// resolving recipe associations on create and update.
type ProductService struct {
	productRepo repositories.ProductRepository
	recipeRepo  repositories.RecipeRepository
	mq          *rabbitmq.Client
}

// NewProductService creates a new ProductService. mq may be nil, in which
// case no events are published.
func NewProductService(productRepo repositories.ProductRepository, recipeRepo repositories.RecipeRepository, mq *rabbitmq.Client) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		recipeRepo:  recipeRepo,
		mq:          mq,
	}
}

// ProductCreateInput carries the fields for creating a product.
type ProductCreateInput struct {
	Name      string
	ImageURL  string
	RecipeIDs []uint
}

// ProductUpdateInput carries the fields for updating a product. A nil
// RecipeIDs keeps the current association set; a non-nil list (possibly
// empty) replaces it.
type ProductUpdateInput struct {
	ID        uint
	Name      string
	ImageURL  string
	RecipeIDs *[]uint
}

// Create persists a new product. Recipe IDs are resolved against the store;
// unknown IDs are dropped, so the association ends up with exactly the
// recipes that exist.
func (s *ProductService) Create(in ProductCreateInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ImageURL) == "" {
		return nil, fmt.Errorf("product name and image URL must not be empty: %w", apperrors.ErrValidation)
	}
	if taken, err := s.productRepo.ExistsByName(in.Name); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("product name '%s' is taken: %w", in.Name, apperrors.ErrConflict)
	}

	recipes, err := s.resolveRecipes(in.RecipeIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     in.Name,
		ImageURL: in.ImageURL,
		Recipes:  recipes,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	log.Printf("Product with ID %d created.", product.ID)

	s.publishEvent("created", product.ID)
	return product, nil
}

// GetAll retrieves all products.
func (s *ProductService) GetAll() ([]models.Product, error) {
	return s.productRepo.GetAll()
}

// GetByID retrieves a single product by its ID.
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	return s.productRepo.GetByID(id)
}

// GetAllByIDs retrieves the products whose IDs exist among ids. It fails
// only when none of them exist.
func (s *ProductService) GetAllByIDs(ids []uint) ([]models.Product, error) {
	products, err := s.productRepo.GetAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products for the given IDs: %w", apperrors.ErrNotFound)
	}
	return products, nil
}

// GetByRecipeID retrieves the products linked to a recipe.
func (s *ProductService) GetByRecipeID(recipeID uint) ([]models.Product, error) {
	products, err := s.productRepo.GetByRecipeID(recipeID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products for recipe with ID %d: %w", recipeID, apperrors.ErrNotFound)
	}
	return products, nil
}

// GetByRecipeIDs retrieves the products linked to any of the given recipes.
func (s *ProductService) GetByRecipeIDs(recipeIDs []uint) ([]models.Product, error) {
	products, err := s.productRepo.GetByRecipeIDs(recipeIDs)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products for the given recipe IDs: %w", apperrors.ErrNotFound)
	}
	return products, nil
}

// Update replaces the scalar fields of an existing product and, when a
// recipe ID list is supplied, its association set.
func (s *ProductService) Update(in ProductUpdateInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ImageURL) == "" {
		return nil, fmt.Errorf("product name and image URL must not be empty: %w", apperrors.ErrValidation)
	}

	product, err := s.productRepo.GetByID(in.ID)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.ImageURL = in.ImageURL
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if in.RecipeIDs != nil {
		recipes, err := s.resolveRecipes(*in.RecipeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.productRepo.ReplaceRecipes(product, recipes); err != nil {
			return nil, err
		}
		product.Recipes = recipes
	}
	log.Printf("Product with ID %d updated.", product.ID)

	s.publishEvent("updated", product.ID)
	return product, nil
}

// Delete removes a product by ID. The existence check makes the not-found
// case deterministic.
func (s *ProductService) Delete(id uint) error {
	exists, err := s.productRepo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product with ID %d: %w", id, apperrors.ErrNotFound)
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("Product with ID %d deleted.", id)

	s.publishEvent("deleted", id)
	return nil
}

// resolveRecipes loads the recipes for the given IDs. Unknown IDs are
// silently dropped; an empty list resolves to an empty association set.
func (s *ProductService) resolveRecipes(ids []uint) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	recipes, err := s.recipeRepo.GetAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *ProductService) publishEvent(action string, id uint) {
	if s.mq == nil {
		return
	}
	if err := s.mq.PublishEntityEvent("product", action, id); err != nil {
		log.Printf("Warning: failed to publish product %s event for ID %d: %v", action, id, err)
	}
}
