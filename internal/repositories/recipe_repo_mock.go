package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"recipebox/internal/models"

	"github.com/google/uuid"
)

// MockRecipeRepository is an in-memory implementation of RecipeRepository.
type MockRecipeRepository struct {
	recipes map[string]models.Recipe
	mu      sync.RWMutex
}

// NewMockRecipeRepository creates a new instance of MockRecipeRepository.
func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{
		recipes: make(map[string]models.Recipe),
	}
}

// GetAll returns all recipes, newest first.
func (r *MockRecipeRepository) GetAll(_ context.Context) ([]models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// GetByID returns a recipe by its ID.
func (r *MockRecipeRepository) GetByID(_ context.Context, id string) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Create adds a new recipe.
func (r *MockRecipeRepository) Create(_ context.Context, recipe *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	r.recipes[recipe.ID] = *recipe
	return nil
}

// Update modifies an existing recipe, keeping its creator and creation time.
func (r *MockRecipeRepository) Update(_ context.Context, recipe *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.recipes[recipe.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *recipe
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.recipes[recipe.ID] = updated
	return nil
}

// Delete removes a recipe by its ID.
func (r *MockRecipeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}
