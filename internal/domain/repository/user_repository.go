package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the unique email constraint rejects the row.
	ErrEmailTaken = errors.New("email already exists")
)

// UserRepository defines the persistence port for users.
// Implementations enforce email uniqueness atomically; callers may pre-check
// but must not rely on it.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// Create inserts a user with an empty bio and fills in the assigned ID and timestamps.
	Create(ctx context.Context, email, passwordHash string, name *string) (*entity.User, error)
	// Save persists Name and Bio of an existing user.
	Save(ctx context.Context, u *entity.User) error
}
