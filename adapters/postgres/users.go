package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type UserRepository struct {
	db dbx.DBTX
}

func NewUserRepository(db dbx.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and fills in the generated id and timestamps.
// A duplicate email yields core.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *core.User) (*core.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, registration_type)
		 VALUES ($1, $2, $3)
		 RETURNING id, completed_registration, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, string(user.RegistrationType)).
		Scan(&user.ID, &user.CompletedRegistration, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*core.User, error) {
	query :=
		`SELECT id, email, password_hash, registration_type, completed_registration, created_at, updated_at
		 FROM users
		 WHERE id = $1`

	user := &core.User{}
	var regType string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &regType,
		&user.CompletedRegistration, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.RegistrationType = core.RegistrationType(regType)

	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *UserRepository) CompleteRegistration(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET completed_registration = TRUE, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return core.ErrUserNotFound
	}

	return nil
}
