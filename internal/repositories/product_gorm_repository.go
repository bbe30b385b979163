package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts a new product row along with its recipe associations.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetAll retrieves all products with their recipes preloaded.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Recipes").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Recipes").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetAllByIDs retrieves the products whose IDs appear in ids. Unknown IDs are
// simply absent from the result.
func (r *GORMProductRepository) GetAllByIDs(ids []uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Recipes").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	return products, nil
}

// GetByRecipeID retrieves the products linked to a recipe via the join table.
func (r *GORMProductRepository) GetByRecipeID(recipeID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Joins("JOIN products_recipes pr ON pr.product_id = products.id").
		Where("pr.recipe_id = ?", recipeID).
		Preload("Recipes").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products by recipe ID %d: %w", recipeID, err)
	}
	return products, nil
}

// GetByRecipeIDs retrieves the products linked to any of the given recipes.
// A product linked to several of them appears once.
func (r *GORMProductRepository) GetByRecipeIDs(recipeIDs []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Distinct("products.*").
		Joins("JOIN products_recipes pr ON pr.product_id = products.id").
		Where("pr.recipe_id IN ?", recipeIDs).
		Preload("Recipes").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products by recipe IDs: %w", err)
	}
	return products, nil
}

// Update persists the scalar fields of an existing product row. Recipe
// associations are managed separately via ReplaceRecipes.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Omit(clause.Associations).Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ID, apperrors.ErrNotFound)
	}
	return nil
}

// ReplaceRecipes replaces the product's recipe association set.
func (r *GORMProductRepository) ReplaceRecipes(product *models.Product, recipes []models.Recipe) error {
	if err := r.db.Model(product).Association("Recipes").Replace(&recipes); err != nil {
		return fmt.Errorf("failed to replace recipes for product %d: %w", product.ID, err)
	}
	return nil
}

// Delete removes a product row and its join-table rows.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Select(clause.Associations).Delete(&models.Product{ID: id})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ExistsByID reports whether a product row with the given ID exists.
func (r *GORMProductRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByName reports whether a product row with the given name exists.
func (r *GORMProductRepository) ExistsByName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return count > 0, nil
}
