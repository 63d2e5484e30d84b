package repositories

import (
	"context"

	"recipebox/internal/models"
)

// UserRepository is the credential store. Create must enforce username and
// email uniqueness atomically and report collisions as *DuplicateError.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
