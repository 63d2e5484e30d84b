package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"recipebox/internal/access"
	"recipebox/internal/auth"
	"recipebox/internal/events"
	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// RecipeInput is the create/update payload. CookingTime is a pointer so that
// an explicit 0 can be told apart from a missing value.
type RecipeInput struct {
	RecipeName    string   `json:"recipeName" validate:"required,max=255"`
	Description   string   `json:"description" validate:"required"`
	Ingredients   []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions  []string `json:"instructions" validate:"omitempty,dive,required"`
	CookingTime   *int     `json:"cookingTime" validate:"required,gte=0"`
	Difficulty    string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Cuisine       string   `json:"cuisine" validate:"required,max=100"`
	PhotoLink     string   `json:"photoLink" validate:"required,url"`
	AverageRating float64  `json:"averageRating" validate:"gte=0,lte=5"`
}

func (in *RecipeInput) normalize() {
	in.RecipeName = strings.TrimSpace(in.RecipeName)
	in.Cuisine = strings.TrimSpace(in.Cuisine)
	in.PhotoLink = strings.TrimSpace(in.PhotoLink)
}

func (in *RecipeInput) applyTo(r *models.Recipe) {
	r.RecipeName = in.RecipeName
	r.Description = in.Description
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	r.CookingTime = *in.CookingTime
	r.Difficulty = in.Difficulty
	r.Cuisine = in.Cuisine
	r.PhotoLink = in.PhotoLink
	r.AverageRating = in.AverageRating
}

// RecipeService handles recipe business logic under the configured access policy.
type RecipeService struct {
	repo     repositories.RecipeRepository
	policy   access.Policy
	events   *events.Emitter
	logger   *slog.Logger
	validate *validator.Validate
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo repositories.RecipeRepository, policy access.Policy, emitter *events.Emitter, logger *slog.Logger) *RecipeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{
		repo:     repo,
		policy:   policy,
		events:   emitter,
		logger:   logger,
		validate: newValidator(),
	}
}

// Policy returns the access policy the service enforces.
func (s *RecipeService) Policy() access.Policy {
	return s.policy
}

// GetAllRecipes retrieves all recipes.
func (s *RecipeService) GetAllRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.repo.GetAll(ctx)
}

// GetRecipeByID retrieves a single recipe by its ID.
func (s *RecipeService) GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateRecipe stores a new recipe stamped with the caller's user id.
func (s *RecipeService) CreateRecipe(ctx context.Context, in RecipeInput) (*models.Recipe, error) {
	requester, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{CreatedBy: requester}
	in.applyTo(recipe)
	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, events.Event{Type: events.RecipeCreated, UserID: requester, RecipeID: recipe.ID})
	return recipe, nil
}

// UpdateRecipe replaces the recipe's fields after the policy allows the caller.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, in RecipeInput) (*models.Recipe, error) {
	requester, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(existing, requester); err != nil {
		s.logger.WarnContext(ctx, "recipe update denied",
			slog.String("recipe_id", id), slog.String("user_id", requester))
		return nil, err
	}

	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	in.applyTo(existing)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload recipe %s: %w", id, err)
	}
	s.events.Emit(ctx, events.Event{Type: events.RecipeUpdated, UserID: requester, RecipeID: id})
	return updated, nil
}

// DeleteRecipe removes the recipe after the policy allows the caller.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	requester, err := s.requester(ctx)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(existing, requester); err != nil {
		s.logger.WarnContext(ctx, "recipe delete denied",
			slog.String("recipe_id", id), slog.String("user_id", requester))
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Emit(ctx, events.Event{Type: events.RecipeDeleted, UserID: requester, RecipeID: id})
	return nil
}

// requester returns the caller's user id. Under the open policy an anonymous
// caller is allowed and yields "".
func (s *RecipeService) requester(ctx context.Context) (string, error) {
	id := auth.UserIDFromContext(ctx)
	if id == "" && s.policy.RequiresAuth() {
		return "", ErrUnauthenticated
	}
	return id, nil
}
