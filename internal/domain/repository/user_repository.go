package repository

import (
	"context"
	"errors"

	"github.com/textmorph/auth-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert violates the unique
	// constraint on users.email. The constraint is the authoritative
	// duplicate signal; callers must not rely on a prior existence check.
	ErrDuplicateEmail = errors.New("email already registered")
)

// ProfilePatch carries a partial profile update. Nil fields are left
// untouched by the store (merge, not replace).
type ProfilePatch struct {
	Name     *string
	AgeGroup *string
	Language *string
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
