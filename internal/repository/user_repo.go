package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// UserRepository handles user account data access.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) error {
	query := `
		INSERT INTO users (
			username, password_hash, role, full_name, department, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	user.CreatedAt = time.Now().UTC()

	_, err := r.getExecer(tx).ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.FullName,
		user.Department,
		string(user.Status),
		user.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q already taken: %w", user.Username, models.ErrInvalidState)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user account.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, password_hash, role, full_name, department, status, created_at
		FROM users
		WHERE username = ?`

	var user models.User
	var roleStr, statusStr, createdStr string

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&roleStr,
		&user.FullName,
		&user.Department,
		&statusStr,
		&createdStr,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.Role = models.Role(roleStr)
	user.Status = models.UserStatus(statusStr)
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)

	return &user, nil
}

// List returns all user accounts ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT username, password_hash, role, full_name, department, status, created_at
		FROM users
		ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var roleStr, statusStr, createdStr string

		err := rows.Scan(
			&user.Username,
			&user.PasswordHash,
			&roleStr,
			&user.FullName,
			&user.Department,
			&statusStr,
			&createdStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.Role = models.Role(roleStr)
		user.Status = models.UserStatus(statusStr)
		user.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)

		users = append(users, &user)
	}
	return users, rows.Err()
}

// UpdateStatus blocks or unblocks a user account.
func (r *UserRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, username string, status models.UserStatus) error {
	result, err := r.getExecer(tx).ExecContext(ctx,
		`UPDATE users SET status = ? WHERE username = ?`,
		string(status), username,
	)
	if err != nil {
		return fmt.Errorf("updating user status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	return nil
}

// Count returns the number of user accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) getExecer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.db
}
