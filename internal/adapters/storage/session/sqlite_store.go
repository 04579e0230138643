package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/domain/user"
)

// SQLiteStore implements Store using SQLite. User and credentials are
// stored as JSON blobs; the portal never queries inside them.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a session record.
// PRE: record.Token is non-empty
// POST: Record is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, record Record) error {
	userJSON, err := json.Marshal(record.User)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	credsJSON, err := json.Marshal(record.Credentials)
	if err != nil {
		return fmt.Errorf("failed to encode session credentials: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO portal_session (token, user_json, credentials_json, created_at) VALUES (?, ?, ?, ?) ON CONFLICT(token) DO UPDATE SET user_json=excluded.user_json, credentials_json=excluded.credentials_json",
		record.Token, string(userJSON), string(credsJSON), record.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Load retrieves a session record by token.
// PRE: token is non-empty
// POST: Returns the record and true when found
func (s *SQLiteStore) Load(ctx context.Context, token string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT token, user_json, credentials_json, created_at FROM portal_session WHERE token = ?", token)
	var record Record
	var userJSON, credsJSON, createdStr string
	err := row.Scan(&record.Token, &userJSON, &credsJSON, &createdStr)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	var u user.User
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		return Record{}, false, fmt.Errorf("failed to decode session user: %w", err)
	}
	var creds api.Credentials
	if err := json.Unmarshal([]byte(credsJSON), &creds); err != nil {
		return Record{}, false, fmt.Errorf("failed to decode session credentials: %w", err)
	}
	record.User = u
	record.Credentials = creds
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return record, true, nil
}

// Delete removes a session record.
// PRE: token is non-empty
// POST: Record with given token is removed
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM portal_session WHERE token = ?", token)
	return err
}

// DeleteExpired removes sessions created before the cutoff.
// POST: Returns the number of removed sessions
func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM portal_session WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
