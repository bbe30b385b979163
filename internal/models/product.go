package models

// Product represents a grocery product that recipes are built from.
type Product struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	ImageURL string   `json:"image_url" gorm:"uniqueIndex;type:varchar(255);not null"`
	Recipes  []Recipe `json:"recipes" gorm:"many2many:products_recipes"`
}
