package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"

	"recipebox/internal/auth"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/events"
	"recipebox/internal/logging"
	"recipebox/internal/repositories"
	"recipebox/internal/server"
	"recipebox/internal/services"
	"recipebox/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the application and blocks until shutdown.
func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	// --- Events (optional) ---
	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.Warn("event publishing disabled", slog.String("error", err.Error()))
		} else {
			defer mqClient.Close()
			publisher = mqClient
			startAuditConsumer(mqClient, logger)
		}
	}
	emitter := events.NewEmitter(publisher, rabbitmq.EventsExchange, logger)

	// --- Services ---
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), hasher, tokens, emitter, logger)
	recipeService := services.NewRecipeService(repositories.NewGORMRecipeRepository(db), cfg.RecipePolicy, emitter, logger)

	app := server.New(cfg, server.Deps{
		Auth:    authService,
		Recipes: recipeService,
		Ping:    func(ctx context.Context) error { return database.Ping(ctx, db) },
		Logger:  logger,
	})

	// --- Start HTTP Server ---
	logger.Info("starting server",
		slog.String("port", cfg.AppPort),
		slog.String("env", cfg.AppEnv),
		slog.String("recipe_policy", cfg.RecipePolicy.String()),
		slog.String("password_hasher", cfg.PasswordHasher),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// startAuditConsumer logs every domain event from the audit queue.
func startAuditConsumer(client *rabbitmq.Client, logger *slog.Logger) {
	audit := events.AuditHandler(logger)
	err := client.ConsumeEvents(rabbitmq.AuditQueue, "#", func(msg amqp.Delivery) error {
		return audit(msg.RoutingKey, msg.Body)
	})
	if err != nil {
		logger.Warn("failed to start audit consumer", slog.String("error", err.Error()))
	}
}
