// Package events emits domain events about users and recipes to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Routing keys.
const (
	UserRegistered = "user.registered"
	RecipeCreated  = "recipe.created"
	RecipeUpdated  = "recipe.updated"
	RecipeDeleted  = "recipe.deleted"
)

// Event is the JSON body of every published message.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	Username   string    `json:"username,omitempty"`
	RecipeID   string    `json:"recipeId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher is the broker side; *rabbitmq.Client satisfies it.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Emitter publishes events best-effort: failures are logged, never returned
// to the request that triggered them.
type Emitter struct {
	pub      Publisher
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// NewEmitter creates an Emitter. A nil pub yields an emitter that only logs at debug level.
func NewEmitter(pub Publisher, exchange string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{pub: pub, exchange: exchange, logger: logger, now: time.Now}
}

// Emit stamps and publishes ev under its Type as routing key.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil {
		return
	}
	if e.pub == nil {
		e.logger.DebugContext(ctx, "event publishing disabled", slog.String("type", ev.Type))
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to marshal event", slog.String("type", ev.Type), slog.String("error", err.Error()))
		return
	}
	if err := e.pub.Publish(e.exchange, ev.Type, body); err != nil {
		e.logger.WarnContext(ctx, "failed to publish event", slog.String("type", ev.Type), slog.String("error", err.Error()))
		return
	}
	e.logger.DebugContext(ctx, "event published", slog.String("type", ev.Type))
}

// Decode parses a message body produced by Emit.
func Decode(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("failed to decode event: missing type")
	}
	return ev, nil
}

// AuditHandler returns a consumer callback that writes each event to logger.
func AuditHandler(logger *slog.Logger) func(routingKey string, body []byte) error {
	return func(routingKey string, body []byte) error {
		ev, err := Decode(body)
		if err != nil {
			return err
		}
		logger.Info("audit event",
			slog.String("routing_key", routingKey),
			slog.String("type", ev.Type),
			slog.String("user_id", ev.UserID),
			slog.String("recipe_id", ev.RecipeID),
			slog.Time("occurred_at", ev.OccurredAt),
		)
		return nil
	}
}
