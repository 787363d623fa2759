package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecocare/internal/model"
	"ecocare/internal/repository"
)

// UserRepository implements repository.UserRepository for SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Insert adds a new user and sets its ID and timestamps.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO users (name, email, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.Image, toMillis(now), toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return id, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.get(ctx, id)
}

// Update changes the non-nil fields and returns the stored user.
func (r *UserRepository) Update(ctx context.Context, id int64, name, email *string) (*model.User, error) {
	r.db.Lock()
	defer r.db.Unlock()

	query := `UPDATE users SET updated_at = ?`
	args := []interface{}{toMillis(time.Now())}
	if name != nil {
		query += ", name = ?"
		args = append(args, *name)
	}
	if email != nil {
		query += ", email = ?"
		args = append(args, *email)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.Conn().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}

	return r.get(ctx, id)
}

func (r *UserRepository) get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	var createdAt, updatedAt int64
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, name, email, image, created_at, updated_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Name, &user.Email, &user.Image, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}
