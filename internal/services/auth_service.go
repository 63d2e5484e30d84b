package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"recipebox/internal/auth"
	"recipebox/internal/events"
	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	// max counts runes; the bcrypt hasher additionally caps the byte length.
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   auth.Hasher
	tokens   *auth.TokenManager
	events   *events.Emitter
	logger   *slog.Logger
	validate *validator.Validate

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths cost one hash comparison.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher auth.Hasher, tokens *auth.TokenManager, emitter *events.Emitter, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   emitter,
		logger:   logger,
		validate: newValidator(),
	}
}

// Register validates the input, hashes the password once and stores the user.
// It returns a session token for the new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	in.Username = models.NormalizeUsername(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", nil, &ValidationError{Fields: map[string]string{
				"password": fmt.Sprintf("must be at most %d bytes", auth.MaxBcryptPasswordBytes),
			}}
		}
		return "", nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) {
			return "", nil, dup
		}
		return "", nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	s.events.Emit(ctx, events.Event{Type: events.UserRegistered, UserID: user.ID, Username: user.Username})

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks the credentials and returns a session token. Every failure a
// client could cause is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.burnVerify(in.Password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("recipebox-dummy-password")
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
