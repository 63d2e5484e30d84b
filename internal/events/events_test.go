package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestEmitter_PublishesJSON(t *testing.T) {
	pub := new(MockPublisher)
	e := NewEmitter(pub, "ex", discardLogger())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return at }

	var sent []byte
	pub.On("Publish", "ex", RecipeCreated, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]byte) }).
		Return(nil).Once()

	e.Emit(context.Background(), Event{Type: RecipeCreated, UserID: "u1", RecipeID: "r1"})
	pub.AssertExpectations(t)

	ev, err := Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, RecipeCreated, ev.Type)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "r1", ev.RecipeID)
	assert.True(t, at.Equal(ev.OccurredAt))
}

func TestEmitter_SwallowsPublishErrors(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", "ex", UserRegistered, mock.Anything).Return(errors.New("broker down")).Once()

	e := NewEmitter(pub, "ex", discardLogger())
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), Event{Type: UserRegistered, UserID: "u1"})
	})
	pub.AssertExpectations(t)
}

func TestEmitter_NilSafe(t *testing.T) {
	var nilEmitter *Emitter
	assert.NotPanics(t, func() { nilEmitter.Emit(context.Background(), Event{Type: RecipeDeleted}) })

	disabled := NewEmitter(nil, "ex", nil)
	assert.NotPanics(t, func() { disabled.Emit(context.Background(), Event{Type: RecipeDeleted}) })
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"userId":"u1"}`))
	assert.Error(t, err)
}

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := AuditHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, handler(RecipeUpdated, []byte(`{"type":"recipe.updated","recipeId":"r9"}`)))
	assert.Contains(t, buf.String(), "recipe_id=r9")
	assert.Contains(t, buf.String(), "routing_key=recipe.updated")

	assert.Error(t, handler(RecipeUpdated, []byte("{")))
}
