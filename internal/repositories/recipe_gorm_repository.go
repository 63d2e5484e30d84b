package repositories

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
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

// GetAll retrieves all recipes, newest first.
func (r *GORMRecipeRepository) GetAll(ctx context.Context) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to get all recipes: %w", err)
	}
	return recipes, nil
}

// GetByID retrieves a single recipe by its ID.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID %s: %w", id, err)
	}
	return &recipe, nil
}

// Create inserts a new recipe.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of an existing recipe. created_by is
// never written after creation.
func (r *GORMRecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipe.ID).
		Select("recipe_name", "description", "ingredients", "instructions", "cooking_time",
			"difficulty", "cuisine", "photo_link", "average_rating", "updated_at").
		Updates(recipe)
	if res.Error != nil {
		return fmt.Errorf("failed to update recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a recipe by its ID.
func (r *GORMRecipeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
