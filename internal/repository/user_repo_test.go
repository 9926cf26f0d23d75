package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	t.Run("Create and get", func(t *testing.T) {
		user := testutil.FixtureStoreman()

		if err := repo.Create(ctx, nil, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		found, err := repo.GetByUsername(ctx, user.Username)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if found.Role != models.RoleStoreman {
			t.Errorf("expected role storeman, got %s", found.Role)
		}
		if !found.Active() {
			t.Error("expected new user to be active")
		}
	})

	t.Run("Duplicate username rejected", func(t *testing.T) {
		err := repo.Create(ctx, nil, testutil.FixtureStoreman())
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Block user", func(t *testing.T) {
		if err := repo.UpdateStatus(ctx, nil, "petrov", models.UserBlocked); err != nil {
			t.Fatalf("failed to block user: %v", err)
		}

		found, _ := repo.GetByUsername(ctx, "petrov")
		if found.Active() {
			t.Error("expected blocked user to be inactive")
		}
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "ghost")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
