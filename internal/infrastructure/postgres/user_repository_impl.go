package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, user_name, email, full_name, avatar, cover_image, password_hash,
	COALESCE(refresh_token, ''), created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (user_name, email, full_name, avatar, cover_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.UserName, u.Email, u.FullName, u.Avatar, u.CoverImage, u.Password)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) FindByUserNameOrEmail(ctx context.Context, userName, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 <> '' AND user_name = $1) OR ($2 <> '' AND email = $2)
		LIMIT 1
	`, userName, email)
}

// UpdateRefreshToken stores the token; "" clears it to NULL.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE users SET refresh_token = NULLIF($1, ''), updated_at = now() WHERE id = $2`, token, uid)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, uid)
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE users SET full_name = $1, email = $2, updated_at = now() WHERE id = $3`, fullName, email, uid)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2`, url, uid)
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id, url string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE users SET cover_image = $1, updated_at = now() WHERE id = $2`, url, uid)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, args ...any) (*entity.User, error) {
	u := &entity.User{}
	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.UserName, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.Password, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)

// parseID rejects ids that cannot be a users.id and returns the canonical form,
// so comparisons run against the uuid primary key without a cast.
func parseID(id string) (string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", repository.ErrNotFound
	}
	return uid.String(), nil
}
