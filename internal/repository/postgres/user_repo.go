package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamasit07/blog/backend/internal/domain"
)

type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// Insert creates a user and returns its id. A taken email is ErrConflict.
func (r *UserRepo) Insert(ctx context.Context, user *domain.User) (int64, error) {
	query := `
	INSERT INTO users (email, username, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, created_at;
	`
	err := r.DB.QueryRowContext(ctx, query, user.Email, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return 0, domain.ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ID, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
	SELECT id, email, username, password_hash, created_at
	FROM users
	WHERE email = $1;
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
	SELECT id, email, username, password_hash, created_at
	FROM users
	WHERE id = $1;
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *UserRepo) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
