package repositories

import (
	"context"

	"recipebox/internal/models"
)

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	GetAll(ctx context.Context) ([]models.Recipe, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
}
