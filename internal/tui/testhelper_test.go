package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/workdesk/workdesk/internal/auth"
	"github.com/workdesk/workdesk/internal/config"
	"github.com/workdesk/workdesk/internal/database"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/testutil"
)

// newTestApp creates an App instance backed by an in-memory database with
// migrations applied and two accounts: storeman "petrov" and admin "admin",
// both with password "secret". The window is set to 120x40 and marked ready.
func newTestApp(t *testing.T) *App {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.MigrateForTest(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	seedTestUsers(t, db)

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := New(db, cfg, logger)

	// Simulate a window size message to make the app ready
	app.width = 120
	app.height = 40
	app.ready = true
	app.updateViewDimensions()

	return app
}

func seedTestUsers(t *testing.T, db *database.DB) {
	t.Helper()

	users := repository.NewUserRepository(db.DB)
	ctx := context.Background()

	storeman := testutil.FixtureStoreman(func(u *models.User) {
		u.PasswordHash = auth.HashPassword("secret")
	})
	if err := users.Create(ctx, nil, storeman); err != nil {
		t.Fatalf("creating storeman: %v", err)
	}

	admin := testutil.FixtureUser(func(u *models.User) {
		u.Username = "admin"
		u.Role = models.RoleAdmin
		u.FullName = "Администратор"
		u.PasswordHash = auth.HashPassword("secret")
	})
	if err := users.Create(ctx, nil, admin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}
}

// loginAs authenticates the app as the given seeded user without driving
// the login screen.
func loginAs(t *testing.T, app *App, username string) {
	t.Helper()

	user, err := app.authSvc.Login(context.Background(), username, "secret")
	if err != nil {
		t.Fatalf("logging in as %s: %v", username, err)
	}
	app.currentUser = user
	app.currentModule = ModuleDashboard
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}
