package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/repository"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: want %d dest, got %d", len(r.vals), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.vals[i].(int64)
		case *string:
			*p = r.vals[i].(string)
		case **string:
			if r.vals[i] == nil {
				*p = nil
			} else {
				s := r.vals[i].(string)
				*p = &s
			}
		case *time.Time:
			*p = r.vals[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	row     pgx.Row
	tag     pgconn.CommandTag
	execErr error

	lastSQL  string
	lastArgs []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL, q.lastArgs = sql, args
	return q.row
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return q.tag, q.execErr
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now()
	name := "Ann"
	q := &fakeQuerier{row: fakeRow{vals: []any{int64(1), "", now, now}}}
	repo := NewUserRepository(q)

	u, err := repo.Create(context.Background(), "a@x.com", "hash", &name)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "", u.Bio)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, now, u.CreatedAt)
	assert.Contains(t, q.lastSQL, "INSERT INTO users")
	assert.Equal(t, []any{"a@x.com", "hash", &name}, q.lastArgs)
}

func TestUserRepository_CreateUniqueViolation(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}}
	repo := NewUserRepository(q)

	_, err := repo.Create(context.Background(), "a@x.com", "hash", nil)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUserRepository_CreateOtherError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "53300"}}}
	repo := NewUserRepository(q)

	_, err := repo.Create(context.Background(), "a@x.com", "hash", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrEmailTaken)
	assert.Contains(t, err.Error(), "db error")
}

func TestUserRepository_Find(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		row     fakeRow
		find    func(*UserRepository) (*entity.User, error)
		wantErr error
		check   func(*testing.T, *entity.User)
	}{
		{
			name: "by id",
			row:  fakeRow{vals: []any{int64(7), "a@x.com", "h", "Ann", "bio", now, now}},
			find: func(r *UserRepository) (*entity.User, error) { return r.FindByID(context.Background(), 7) },
			check: func(t *testing.T, u *entity.User) {
				assert.Equal(t, int64(7), u.ID)
				require.NotNil(t, u.Name)
				assert.Equal(t, "Ann", *u.Name)
				assert.Equal(t, "bio", u.Bio)
			},
		},
		{
			name: "by email with null name",
			row:  fakeRow{vals: []any{int64(8), "b@x.com", "h", nil, "", now, now}},
			find: func(r *UserRepository) (*entity.User, error) { return r.FindByEmail(context.Background(), "b@x.com") },
			check: func(t *testing.T, u *entity.User) {
				assert.Equal(t, "b@x.com", u.Email)
				assert.Nil(t, u.Name)
			},
		},
		{
			name:    "no rows",
			row:     fakeRow{err: pgx.ErrNoRows},
			find:    func(r *UserRepository) (*entity.User, error) { return r.FindByID(context.Background(), 1) },
			wantErr: repository.ErrUserNotFound,
		},
		{
			name: "db failure",
			row:  fakeRow{err: errors.New("conn reset")},
			find: func(r *UserRepository) (*entity.User, error) { return r.FindByEmail(context.Background(), "x") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.find(NewUserRepository(&fakeQuerier{row: tt.row}))
			if tt.check == nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NotErrorIs(t, err, repository.ErrUserNotFound)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}

func TestUserRepository_Save(t *testing.T) {
	name := "Ann"
	u := &entity.User{ID: 3, Name: &name, Bio: "hi"}

	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	require.NoError(t, NewUserRepository(q).Save(context.Background(), u))
	assert.Contains(t, q.lastSQL, "SET name = $1, bio = $2")
	assert.Equal(t, int64(3), q.lastArgs[3])
	assert.False(t, u.UpdatedAt.IsZero())

	q = &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
	assert.ErrorIs(t, NewUserRepository(q).Save(context.Background(), u), repository.ErrUserNotFound)

	q = &fakeQuerier{execErr: errors.New("timeout")}
	err := NewUserRepository(q).Save(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
