// Package auth provides local account authentication for the workdesk
// terminal. Passwords are stored as SHA-256 digests; the tool runs on a
// trusted workstation and the hash only guards against casual reads of
// the database file.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
)

// ErrInvalidCredentials is returned for a wrong username or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service provides login and account management.
type Service struct {
	db     *sql.DB
	users  *repository.UserRepository
	logger *slog.Logger
}

// NewService creates a new auth service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		users:  repository.NewUserRepository(db),
		logger: logger,
	}
}

// Login verifies credentials and returns the account. Blocked accounts
// cannot log in even with the right password.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !verifyPassword(user.PasswordHash, password) {
		s.logger.Warn("failed login attempt", "username", user.Username)
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, fmt.Errorf("account %q is blocked: %w", user.Username, models.ErrPermissionDenied)
	}

	s.logger.Info("user logged in", "username", user.Username, "role", user.Role)
	return user, nil
}

// Register creates a new account. Only admins may register users.
func (s *Service) Register(ctx context.Context, actor *models.User, input RegisterInput) (*models.User, error) {
	if actor == nil || !actor.Active() || actor.Role != models.RoleAdmin {
		return nil, models.ErrPermissionDenied
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, &models.ValidationError{Field: "username", Reason: "username is required"}
	}
	if len(input.Password) < 4 {
		return nil, &models.ValidationError{Field: "password", Reason: "password is too short"}
	}
	if !validRole(input.Role) {
		return nil, &models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", input.Role)}
	}

	user := &models.User{
		Username:     username,
		PasswordHash: HashPassword(input.Password),
		Role:         input.Role,
		FullName:     input.FullName,
		Department:   input.Department,
		Status:       models.UserActive,
	}

	if err := s.users.Create(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", user.Username, "role", user.Role)
	return user, nil
}

// SetStatus blocks or unblocks an account. Admin only; admins cannot
// block themselves.
func (s *Service) SetStatus(ctx context.Context, actor *models.User, username string, status models.UserStatus) error {
	if actor == nil || !actor.Active() || actor.Role != models.RoleAdmin {
		return models.ErrPermissionDenied
	}
	if actor.Username == username {
		return fmt.Errorf("cannot change own status: %w", models.ErrInvalidState)
	}
	return s.users.UpdateStatus(ctx, nil, username, status)
}

// ListUsers returns all accounts. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if actor == nil || !actor.Active() || actor.Role != models.RoleAdmin {
		return nil, models.ErrPermissionDenied
	}
	return s.users.List(ctx)
}

// HashPassword returns the hex SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func verifyPassword(storedHash, password string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleCustomer, models.RoleManager, models.RoleExecutor,
		models.RoleStoreman, models.RoleAdmin:
		return true
	}
	return false
}

// RegisterInput contains data for creating an account.
type RegisterInput struct {
	Username   string
	Password   string
	Role       models.Role
	FullName   string
	Department string
}
