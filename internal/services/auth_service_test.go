package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recipebox/internal/auth"
	"recipebox/internal/events"
	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/repositories"
	"recipebox/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func newAuthService(repo repositories.UserRepository, pub events.Publisher) (*services.AuthService, auth.Hasher, *auth.TokenManager) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)
	emitter := events.NewEmitter(pub, "test.events", logging.Discard())
	return services.NewAuthService(repo, hasher, tokens, emitter, logging.Discard()), hasher, tokens
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockPub := new(MockPublisher)
	authService, hasher, tokens := newAuthService(mockRepo, mockPub)
	ctx := context.Background()

	var stored *models.User
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.User)
			stored.ID = "user-123"
		}).
		Return(nil).Once()
	mockPub.On("Publish", "test.events", events.UserRegistered, mock.Anything).Return(nil).Once()

	token, user, err := authService.Register(ctx, services.RegisterInput{
		Username: "  alice ",
		Email:    " A@X.com ",
		Password: "secret1",
	})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "password must be stored hashed")
	ok, err := hasher.Verify("secret1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService, _, _ := newAuthService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(&repositories.DuplicateError{Field: "email"}).Once()

	_, _, err := authService.Register(ctx, services.RegisterInput{Username: "alice2", Email: "a@x.com", Password: "secret1"})
	var dup *repositories.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService, _, _ := newAuthService(mockRepo, nil)

	_, _, err := authService.Register(context.Background(), services.RegisterInput{
		Username: "  ab ",
		Email:    "not-an-email",
		Password: "123",
	})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	_, _, err = authService.Register(context.Background(), services.RegisterInput{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "username is required", verr.Fields["username"])
	assert.Equal(t, "email is required", verr.Fields["email"])
	assert.Equal(t, "password is required", verr.Fields["password"])

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_MultibytePassword(t *testing.T) {
	// Passes the rune-based max=72 rule but is 80 bytes long.
	password := strings.Repeat("é", 40)
	input := services.RegisterInput{Username: "alice", Email: "a@x.com", Password: password}
	ctx := context.Background()

	mockRepo := new(MockUserRepository)
	authService, _, _ := newAuthService(mockRepo, nil)
	_, _, err := authService.Register(ctx, input)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "must be at most 72 bytes", verr.Fields["password"])
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	argonRepo := new(MockUserRepository)
	argonRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
	argonService := services.NewAuthService(argonRepo, auth.NewArgon2Hasher(),
		auth.NewTokenManager(testJWTSecret, time.Hour), nil, logging.Discard())
	_, _, err = argonService.Register(ctx, input)
	assert.NoError(t, err)
	argonRepo.AssertExpectations(t)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService, _, _ := newAuthService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("disk full")).Once()
	_, _, err := authService.Register(ctx, services.RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	var dup *repositories.DuplicateError
	assert.False(t, errors.As(err, &dup))
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService, hasher, tokens := newAuthService(mockRepo, nil)
	ctx := context.Background()

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	user := &models.User{ID: "user-123", Username: "alice", Email: "a@x.com", PasswordHash: hash}

	// Successful login, email normalized before lookup
	mockRepo.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
	token, err := authService.Login(ctx, services.LoginInput{Email: " A@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "alice", claims.Username)

	// Wrong password
	mockRepo.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
	_, err = authService.Login(ctx, services.LoginInput{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown email gives the same error
	mockRepo.On("GetByEmail", ctx, "nobody@x.com").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Login(ctx, services.LoginInput{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Missing fields never reach the store
	_, err = authService.Login(ctx, services.LoginInput{Email: "", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_Faults(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService, _, _ := newAuthService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@x.com").Return(nil, errors.New("connection reset")).Once()
	_, err := authService.Login(ctx, services.LoginInput{Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)

	broken := &models.User{ID: "u1", Username: "alice", Email: "a@x.com", PasswordHash: "plaintext"}
	mockRepo.On("GetByEmail", ctx, "a@x.com").Return(broken, nil).Once()
	_, err = authService.Login(ctx, services.LoginInput{Email: "a@x.com", Password: "plaintext"})
	assert.ErrorIs(t, err, auth.ErrMalformedHash)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService, _, tokens := newAuthService(new(MockUserRepository), nil)

	valid, err := tokens.Issue("user-123", "alice")
	require.NoError(t, err)
	claims, err := authService.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired, err := auth.NewTokenManager(testJWTSecret, time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue("user-123", "alice")
	require.NoError(t, err)
	_, err = authService.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}
