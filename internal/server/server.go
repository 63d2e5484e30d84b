// Package server assembles the Fiber application: middleware, routes and error handling.
package server

import (
	"errors"
	"log/slog"
	"strings"

	"recipebox/internal/config"
	"recipebox/internal/handlers"
	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps are the services the HTTP layer serves.
type Deps struct {
	Auth    *services.AuthService
	Recipes *services.RecipeService
	Ping    handlers.PingFunc
	Logger  *slog.Logger
}

// New builds the Fiber app for cfg.
func New(cfg *config.Config, deps Deps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "recipebox",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(cfg.IsDevelopment(), log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	origins := strings.Join(cfg.CORSAllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		// cors refuses credentials with a wildcard origin.
		AllowCredentials: origins != "" && origins != "*",
	}))
	if !cfg.IsProduction() {
		app.Use(logger.New()) // Request logger
	}

	// --- Health Check Endpoints ---
	handlers.NewHealthHandler(deps.Ping, log).RegisterRoutes(app)

	// --- API Routes ---
	api := app.Group("/api")
	handlers.NewAuthHandler(deps.Auth, log).RegisterRoutes(api)

	var gateway []fiber.Handler
	if deps.Recipes.Policy().RequiresAuth() {
		gateway = append(gateway, middleware.AuthRequired(deps.Auth, log))
	}
	handlers.NewRecipeHandler(deps.Recipes, log).RegisterRoutes(api, gateway...)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
			"path":    c.OriginalURL(),
		})
	})

	return app
}

// errorHandler logs unexpected failures and hides their detail outside development.
func errorHandler(development bool, log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{
				"message": fe.Message,
			})
		}

		log.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			slog.String("error", err.Error()),
		)

		body := fiber.Map{"message": "Something went wrong!"}
		if development {
			body["error"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
