package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the portal database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// The portal owns no domain data; the backend does. Locally it only
	// persists portal sessions so logins survive a restart.
	schema := `
	CREATE TABLE IF NOT EXISTS portal_session (
		token TEXT PRIMARY KEY,
		user_json TEXT NOT NULL,
		credentials_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
