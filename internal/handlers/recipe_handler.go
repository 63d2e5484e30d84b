package handlers

import (
	"log/slog"

	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	service *services.RecipeService
	logger  *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *services.RecipeService, logger *slog.Logger) *RecipeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the recipe routes with the Fiber app, behind the
// given middleware.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router, middleware ...fiber.Handler) {
	recipeRoutes := router.Group("/recipes", middleware...)
	recipeRoutes.Get("/", h.HandleGetRecipes)
	recipeRoutes.Get("/:id", h.HandleGetRecipeByID)
	recipeRoutes.Post("/", h.HandleCreateRecipe)
	recipeRoutes.Put("/:id", h.HandleUpdateRecipe)
	recipeRoutes.Delete("/:id", h.HandleDeleteRecipe)
}

// HandleGetRecipes retrieves all recipes.
func (h *RecipeHandler) HandleGetRecipes(c *fiber.Ctx) error {
	recipes, err := h.service.GetAllRecipes(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

// HandleGetRecipeByID retrieves a single recipe by its ID.
func (h *RecipeHandler) HandleGetRecipeByID(c *fiber.Ctx) error {
	recipe, err := h.service.GetRecipeByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleCreateRecipe creates a new recipe owned by the caller.
func (h *RecipeHandler) HandleCreateRecipe(c *fiber.Ctx) error {
	var req services.RecipeInput
	if err := c.BodyParser(&req); err != nil {
		h.logger.DebugContext(c.UserContext(), "failed to parse recipe body", slog.String("error", err.Error()))
		return invalidBody(c)
	}

	recipe, err := h.service.CreateRecipe(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleUpdateRecipe replaces an existing recipe.
func (h *RecipeHandler) HandleUpdateRecipe(c *fiber.Ctx) error {
	var req services.RecipeInput
	if err := c.BodyParser(&req); err != nil {
		h.logger.DebugContext(c.UserContext(), "failed to parse recipe body", slog.String("error", err.Error()))
		return invalidBody(c)
	}

	recipe, err := h.service.UpdateRecipe(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleDeleteRecipe deletes a recipe by its ID.
func (h *RecipeHandler) HandleDeleteRecipe(c *fiber.Ctx) error {
	if err := h.service.DeleteRecipe(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Recipe deleted successfully",
	})
}
