package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/repository"
)

const timeLayout = time.RFC3339Nano

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*entity.User, error) {
	now := time.Now().UTC()
	stamp := now.Format(timeLayout)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, bio, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?)
	`, email, passwordHash, nullString(name), stamp, stamp)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &entity.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Bio:          "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, bio, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, bio, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, bio = ?, updated_at = ?
		WHERE id = ?
	`, nullString(u.Name), u.Bio, now.Format(timeLayout), u.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	u.UpdatedAt = now
	return nil
}

func scanUser(row *sql.Row) (*entity.User, error) {
	var (
		u                    entity.User
		name                 sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.Bio, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	u.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return true
	}
	// primary result code only, when extended codes are off
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

var _ repository.UserRepository = (*UserRepository)(nil)
