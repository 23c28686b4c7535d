package application

import (
	"context"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
)

// MediaStorage uploads a locally staged file and returns its public URL.
type MediaStorage interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
}

// UserIndexer mirrors public profiles into a search index.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
	SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// Notifier announces account events, e.g. by queueing emails.
type Notifier interface {
	UserRegistered(ctx context.Context, u *entity.User) error
	PasswordChanged(ctx context.Context, u *entity.User) error
}
