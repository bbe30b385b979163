package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

// Create inserts a new recipe row along with its product associations.
func (r *GORMRecipeRepository) Create(recipe *models.Recipe) error {
	if err := r.db.Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// GetAll retrieves all recipes with their products preloaded.
func (r *GORMRecipeRepository) GetAll() ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := r.db.Preload("Products").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to get all recipes: %w", err)
	}
	return recipes, nil
}

// GetByID retrieves a single recipe by its ID.
func (r *GORMRecipeRepository) GetByID(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.Preload("Products").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, err)
	}
	return &recipe, nil
}

// GetAllByIDs retrieves the recipes whose IDs appear in ids. Unknown IDs are
// simply absent from the result.
func (r *GORMRecipeRepository) GetAllByIDs(ids []uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := r.db.Preload("Products").Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipes by IDs: %w", err)
	}
	return recipes, nil
}

// GetByProductID retrieves the recipes linked to a product via the join table.
func (r *GORMRecipeRepository) GetByProductID(productID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.
		Joins("JOIN products_recipes pr ON pr.recipe_id = recipes.id").
		Where("pr.product_id = ?", productID).
		Preload("Products").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by product ID %d: %w", productID, err)
	}
	return recipes, nil
}

// GetByProductIDs retrieves the recipes linked to any of the given products.
// A recipe linked to several of them appears once.
func (r *GORMRecipeRepository) GetByProductIDs(productIDs []uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.
		Distinct("recipes.*").
		Joins("JOIN products_recipes pr ON pr.recipe_id = recipes.id").
		Where("pr.product_id IN ?", productIDs).
		Preload("Products").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by product IDs: %w", err)
	}
	return recipes, nil
}

// Update persists the scalar fields of an existing recipe row. Product
// associations are managed separately via ReplaceProducts.
func (r *GORMRecipeRepository) Update(recipe *models.Recipe) error {
	res := r.db.Omit(clause.Associations).Save(recipe)
	if res.Error != nil {
		return fmt.Errorf("failed to update recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe with ID %d: %w", recipe.ID, apperrors.ErrNotFound)
	}
	return nil
}

// ReplaceProducts replaces the recipe's product association set.
func (r *GORMRecipeRepository) ReplaceProducts(recipe *models.Recipe, products []models.Product) error {
	if err := r.db.Model(recipe).Association("Products").Replace(&products); err != nil {
		return fmt.Errorf("failed to replace products for recipe %d: %w", recipe.ID, err)
	}
	return nil
}

// Delete removes a recipe row and its join-table rows.
func (r *GORMRecipeRepository) Delete(id uint) error {
	res := r.db.Select(clause.Associations).Delete(&models.Recipe{ID: id})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe with ID %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ExistsByID reports whether a recipe row with the given ID exists.
func (r *GORMRecipeRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByName reports whether a recipe row with the given name exists.
func (r *GORMRecipeRepository) ExistsByName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Recipe{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe name: %w", err)
	}
	return count > 0, nil
}
