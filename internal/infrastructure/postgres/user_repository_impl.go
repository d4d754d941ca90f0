package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/repository"
)

const uniqueViolation = "23505"

// Querier is the part of *pgxpool.Pool the repository uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*entity.User, error) {
	u := &entity.User{Email: email, PasswordHash: passwordHash, Name: name}

	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, bio)
		VALUES ($1, $2, $3, '')
		RETURNING id, bio, created_at, updated_at
	`, email, passwordHash, name)

	if err := row.Scan(&u.ID, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, name, bio, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, name, bio, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

// Save writes name and bio only; email and password hash are not mutable here.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	now := time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, bio = $2, updated_at = $3
		WHERE id = $4
	`, u.Name, u.Bio, now, u.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	u.UpdatedAt = now
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
