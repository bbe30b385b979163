package repositories

import "github.com/AlexPyslar03/product-selector-backend/internal/models"

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	Create(recipe *models.Recipe) error
	GetAll() ([]models.Recipe, error)
	GetByID(id uint) (*models.Recipe, error)
	GetAllByIDs(ids []uint) ([]models.Recipe, error)
	GetByProductID(productID uint) ([]models.Recipe, error)
	GetByProductIDs(productIDs []uint) ([]models.Recipe, error)
	Update(recipe *models.Recipe) error
	ReplaceProducts(recipe *models.Recipe, products []models.Product) error
	Delete(id uint) error
	ExistsByID(id uint) (bool, error)
	ExistsByName(name string) (bool, error)
}
