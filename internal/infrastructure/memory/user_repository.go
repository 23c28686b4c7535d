package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
)

// UserRepository keeps users in process memory. It backs STORE_DRIVER=memory
// for local runs and is the store used by the service and handler tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.users {
		if v.UserName == u.UserName || v.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.users {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByUserNameOrEmail(_ context.Context, userName, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.users {
		if (userName != "" && v.UserName == userName) || (email != "" && v.Email == email) {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateRefreshToken(_ context.Context, id, token string) error {
	return r.update(id, func(u *entity.User) error { u.RefreshToken = token; return nil })
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(u *entity.User) error { u.Password = hash; return nil })
}

func (r *UserRepository) UpdateAccount(_ context.Context, id, fullName, email string) error {
	return r.update(id, func(u *entity.User) error {
		for k, v := range r.users {
			if k != id && v.Email == email {
				return repository.ErrDuplicate
			}
		}
		u.FullName, u.Email = fullName, email
		return nil
	})
}

func (r *UserRepository) UpdateAvatar(_ context.Context, id, url string) error {
	return r.update(id, func(u *entity.User) error { u.Avatar = url; return nil })
}

func (r *UserRepository) UpdateCoverImage(_ context.Context, id, url string) error {
	return r.update(id, func(u *entity.User) error { u.CoverImage = url; return nil })
}

func (r *UserRepository) update(id string, fn func(u *entity.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
