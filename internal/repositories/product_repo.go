package repositories

import "github.com/AlexPyslar03/product-selector-backend/internal/models"

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(product *models.Product) error
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	GetAllByIDs(ids []uint) ([]models.Product, error)
	GetByRecipeID(recipeID uint) ([]models.Product, error)
	GetByRecipeIDs(recipeIDs []uint) ([]models.Product, error)
	Update(product *models.Product) error
	ReplaceRecipes(product *models.Product, recipes []models.Recipe) error
	Delete(id uint) error
	ExistsByID(id uint) (bool, error)
	ExistsByName(name string) (bool, error)
}
