package models

// DifficultyLevel grades how hard a recipe is to cook.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

// Recipe represents a recipe composed of products. It is the inverse side of
// the products_recipes many-to-many association.
type Recipe struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Description     string          `json:"description" gorm:"type:varchar(500);not null"`
	Vegan           bool            `json:"vegan" gorm:"not null"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level" gorm:"type:varchar(20);not null"`
	Rating          *int64          `json:"rating"` // 1-5, unset until rated
	ImageURL        string          `json:"image_url" gorm:"uniqueIndex;type:varchar(255);not null"`
	Products        []Product       `json:"products,omitempty" gorm:"many2many:products_recipes"`
}
