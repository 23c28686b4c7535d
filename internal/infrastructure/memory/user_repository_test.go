package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	u := &entity.User{UserName: "alice", Email: "alice@x.io", FullName: "Alice", Avatar: "https://cdn/a.png"}
	require.NoError(t, r.Create(ctx, u))
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	got, err := r.FindByUserNameOrEmail(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = r.FindByUserNameOrEmail(ctx, "", "alice@x.io")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = r.FindByUserNameOrEmail(ctx, "", "")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = r.Create(ctx, &entity.User{UserName: "alice", Email: "other@x.io"})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_PartialUpdates(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := &entity.User{UserName: "bob", Email: "bob@x.io", Password: "h1"}
	require.NoError(t, r.Create(ctx, u))
	require.NoError(t, r.Create(ctx, &entity.User{UserName: "carol", Email: "carol@x.io"}))

	require.NoError(t, r.UpdateRefreshToken(ctx, u.ID, "rt"))
	require.NoError(t, r.UpdatePassword(ctx, u.ID, "h2"))
	require.NoError(t, r.UpdateAvatar(ctx, u.ID, "a"))
	require.NoError(t, r.UpdateCoverImage(ctx, u.ID, "c"))
	require.ErrorIs(t, r.UpdateAccount(ctx, u.ID, "Bob", "carol@x.io"), repository.ErrDuplicate)
	require.NoError(t, r.UpdateAccount(ctx, u.ID, "Bob", "bob2@x.io"))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "rt", got.RefreshToken)
	require.Equal(t, "h2", got.Password)
	require.Equal(t, "a", got.Avatar)
	require.Equal(t, "c", got.CoverImage)
	require.Equal(t, "Bob", got.FullName)
	require.Equal(t, "bob2@x.io", got.Email)

	require.ErrorIs(t, r.UpdatePassword(ctx, "missing", "x"), repository.ErrNotFound)
}
