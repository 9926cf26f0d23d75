package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/testutil"
)

func setupService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	migrationsDir := filepath.Join("..", "..", "internal", "database", "migrations")
	db.RunMigrations(t, migrationsDir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db.DB, logger), db
}

func fixtureAdmin() *models.User {
	return testutil.FixtureUser(func(u *models.User) {
		u.Username = "admin"
		u.Role = models.RoleAdmin
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	admin := fixtureAdmin()

	t.Run("Register and log in", func(t *testing.T) {
		user, err := svc.Register(ctx, admin, RegisterInput{
			Username: "petrov",
			Password: "warehouse",
			Role:     models.RoleStoreman,
			FullName: "Петров П.П.",
		})
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if user.PasswordHash == "warehouse" {
			t.Error("password stored in clear")
		}

		logged, err := svc.Login(ctx, "petrov", "warehouse")
		if err != nil {
			t.Fatalf("failed to log in: %v", err)
		}
		if logged.Role != models.RoleStoreman {
			t.Errorf("expected role storeman, got %s", logged.Role)
		}
	})

	t.Run("Wrong password rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "petrov", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown user indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "warehouse")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Non-admin cannot register", func(t *testing.T) {
		_, err := svc.Register(ctx, testutil.FixtureManager(), RegisterInput{
			Username: "new",
			Password: "password",
			Role:     models.RoleExecutor,
		})
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("Short password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, admin, RegisterInput{
			Username: "new",
			Password: "abc",
			Role:     models.RoleExecutor,
		})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestBlockedAccount(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	admin := fixtureAdmin()

	if _, err := svc.Register(ctx, admin, RegisterInput{
		Username: "kuznetsov",
		Password: "workshop",
		Role:     models.RoleExecutor,
	}); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	if err := svc.SetStatus(ctx, admin, "kuznetsov", models.UserBlocked); err != nil {
		t.Fatalf("failed to block: %v", err)
	}

	_, err := svc.Login(ctx, "kuznetsov", "workshop")
	if !errors.Is(err, models.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for blocked account, got %v", err)
	}

	t.Run("Admin cannot block self", func(t *testing.T) {
		err := svc.SetStatus(ctx, admin, admin.Username, models.UserBlocked)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}
