package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/workdesk/workdesk/internal/config"
	_ "modernc.org/sqlite"
)

// NewInMemory creates an in-memory database for testing purposes.
// It enables foreign keys but does not enable WAL mode or backups.
func NewInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &DB{
		DB:     sqlDB,
		path:   ":memory:",
		config: &config.DatabaseConfig{},
	}, nil
}

// MigrateForTest runs all embedded migrations against db. Test setup
// helper; production startup goes through NewMigrator/MigrateUp in main.
func MigrateForTest(db *DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	_, err = m.MigrateUp(context.Background())
	return err
}
