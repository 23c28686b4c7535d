package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a write violates userName/email uniqueness.
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository defines the credential store. Partial updates touch only the
// named field and never re-validate the whole record.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByUserNameOrEmail matches either field; empty arguments are ignored.
	FindByUserNameOrEmail(ctx context.Context, userName, email string) (*entity.User, error)

	UpdateRefreshToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateAccount(ctx context.Context, id, fullName, email string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error
}
