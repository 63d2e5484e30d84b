package models

import "time"

// Difficulty levels accepted for a recipe.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Recipe is the owned resource of the application. CreatedBy is set once at
// creation and never changed afterwards.
type Recipe struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipeName    string    `json:"recipeName" gorm:"type:varchar(255);not null"`
	Description   string    `json:"description" gorm:"type:text;not null"`
	Ingredients   []string  `json:"ingredients" gorm:"type:text;serializer:json"`
	Instructions  []string  `json:"instructions" gorm:"type:text;serializer:json"`
	CookingTime   int       `json:"cookingTime"`
	Difficulty    string    `json:"difficulty" gorm:"type:varchar(16)"`
	Cuisine       string    `json:"cuisine" gorm:"type:varchar(100)"`
	PhotoLink     string    `json:"photoLink" gorm:"type:text"`
	AverageRating float64   `json:"averageRating" gorm:"default:0"`
	CreatedBy     string    `json:"createdBy,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OwnerID returns the id of the user that created the recipe.
func (r *Recipe) OwnerID() string {
	return r.CreatedBy
}
